package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/towline/service-towing/internal/common/domain"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
	photoDomain "github.com/towline/service-towing/internal/domain/photo"
)

// UploadPhotoRequest holds the data to attach a photo to a booking.
type UploadPhotoRequest struct {
	PhotoType string `json:"photo_type" binding:"required"`
	PhotoURL  string `json:"photo_url" binding:"required"`
	Caption   string `json:"caption"`
}

// PhotoDTO is the API response representation of a booking photo.
type PhotoDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UploaderID uuid.UUID `json:"uploader_id"`
	PhotoType  string    `json:"photo_type"`
	PhotoURL   string    `json:"photo_url"`
	Caption    string    `json:"caption"`
	TakenAt    time.Time `json:"taken_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoService handles booking photo use cases (scene documentation at the
// pickup point plus pickup/dropoff proof shots).
type PhotoService struct {
	repo        photoDomain.PhotoRepository
	bookingRepo bookingDomain.BookingRepository
	logger      *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(
	repo photoDomain.PhotoRepository,
	bookingRepo bookingDomain.BookingRepository,
	logger *zap.Logger,
) *PhotoService {
	return &PhotoService{repo: repo, bookingRepo: bookingRepo, logger: logger}
}

// UploadPhoto attaches a new photo to a booking. Customers may only attach
// photos to their own bookings; admins may attach to any.
func (s *PhotoService) UploadPhoto(ctx context.Context, bookingID, uploaderID uuid.UUID, isAdmin bool, req UploadPhotoRequest) (*PhotoDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(uploaderID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	photo, err := photoDomain.NewBookingPhoto(
		bookingID,
		uploaderID,
		photoDomain.PhotoType(req.PhotoType),
		req.PhotoURL,
		req.Caption,
	)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, photo); err != nil {
		return nil, err
	}

	s.logger.Info("booking photo uploaded",
		zap.String("booking_id", bookingID.String()),
		zap.String("photo_type", req.PhotoType),
	)

	return toPhotoDTO(photo), nil
}

// GetBookingPhotos returns all photos for a booking. Customers may only view
// photos on their own bookings.
func (s *PhotoService) GetBookingPhotos(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) ([]*PhotoDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	photos, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos, nil
}

func toPhotoDTO(p *photoDomain.BookingPhoto) *PhotoDTO {
	return &PhotoDTO{
		ID:         p.ID(),
		BookingID:  p.BookingID(),
		UploaderID: p.UploaderID(),
		PhotoType:  string(p.PhotoType()),
		PhotoURL:   p.PhotoURL(),
		Caption:    p.Caption(),
		TakenAt:    p.TakenAt(),
		CreatedAt:  p.CreatedAt(),
	}
}
