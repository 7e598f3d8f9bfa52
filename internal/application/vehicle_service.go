package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/towline/service-towing/internal/common/domain"
	vehicleDomain "github.com/towline/service-towing/internal/domain/vehicle"
)

// CreateVehicleRequest is the request DTO for saving a vehicle profile.
type CreateVehicleRequest struct {
	Brand       string `json:"brand" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Year        int    `json:"year"`
	Color       string `json:"color"`
	PlateNumber string `json:"plate_number"`
	Notes       string `json:"notes"`
}

// UpdateVehicleRequest is the request DTO for updating a vehicle profile.
type UpdateVehicleRequest struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Color       string `json:"color"`
	PlateNumber string `json:"plate_number"`
	Notes       string `json:"notes"`
}

// VehicleProfileDTO is the API response representation of a saved vehicle.
type VehicleProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year,omitempty"`
	Color       string    `json:"color,omitempty"`
	PlateNumber string    `json:"plate_number,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VehicleService implements use cases for saved vehicle profiles.
type VehicleService struct {
	repo   vehicleDomain.VehicleRepository
	logger *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicleDomain.VehicleRepository, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

// CreateVehicle saves a new vehicle profile for the given owner.
func (s *VehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, req CreateVehicleRequest) (*VehicleProfileDTO, error) {
	v, err := vehicleDomain.NewVehicle(
		ownerID,
		req.Brand, req.Model,
		req.Year,
		req.Color, req.PlateNumber, req.Notes,
	)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, v); err != nil {
		s.logger.Error("failed to create vehicle profile", zap.Error(err))
		return nil, fmt.Errorf("failed to create vehicle profile: %w", err)
	}

	s.logger.Info("vehicle profile created",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toVehicleProfileDTO(v)
	return &result, nil
}

// GetMyVehicles returns all vehicle profiles for the given owner.
func (s *VehicleService) GetMyVehicles(ctx context.Context, ownerID uuid.UUID) ([]VehicleProfileDTO, error) {
	vehicles, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	dtos := make([]VehicleProfileDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleProfileDTO(v)
	}
	return dtos, nil
}

// GetVehicle returns a single vehicle profile by ID, verifying ownership.
func (s *VehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*VehicleProfileDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this vehicle profile")
	}
	result := toVehicleProfileDTO(v)
	return &result, nil
}

// UpdateVehicle updates a vehicle profile, verifying ownership.
func (s *VehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req UpdateVehicleRequest) (*VehicleProfileDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this vehicle profile")
	}

	v.Update(req.Brand, req.Model, req.Year, req.Color, req.PlateNumber, req.Notes)

	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to update vehicle profile", zap.Error(err))
		return nil, fmt.Errorf("failed to update vehicle profile: %w", err)
	}

	s.logger.Info("vehicle profile updated", zap.String("vehicle_id", vehicleID.String()))
	result := toVehicleProfileDTO(v)
	return &result, nil
}

// DeleteVehicle archives a vehicle profile, verifying ownership.
func (s *VehicleService) DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if !v.IsOwnedBy(ownerID) {
		return domain.NewForbiddenError("you do not own this vehicle profile")
	}

	v.Archive()
	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to archive vehicle profile", zap.Error(err))
		return fmt.Errorf("failed to archive vehicle profile: %w", err)
	}

	s.logger.Info("vehicle profile archived", zap.String("vehicle_id", vehicleID.String()))
	return nil
}

func toVehicleProfileDTO(v *vehicleDomain.Vehicle) VehicleProfileDTO {
	return VehicleProfileDTO{
		ID:          v.ID(),
		OwnerID:     v.OwnerID(),
		Brand:       v.Brand(),
		Model:       v.Model(),
		Year:        v.Year(),
		Color:       v.Color(),
		PlateNumber: v.PlateNumber(),
		Notes:       v.Notes(),
		Status:      string(v.Status()),
		CreatedAt:   v.CreatedAt(),
		UpdatedAt:   v.UpdatedAt(),
	}
}
