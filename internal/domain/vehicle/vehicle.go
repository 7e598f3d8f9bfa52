package vehicle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VehicleStatus represents the lifecycle state of a saved vehicle profile.
type VehicleStatus string

const (
	VehicleStatusActive   VehicleStatus = "active"
	VehicleStatusArchived VehicleStatus = "archived"
)

// Vehicle is the aggregate root for a customer's saved vehicle profile.
// Profiles pre-fill quote requests; they are not the per-booking vehicle
// descriptor, which is snapshotted onto the booking itself.
type Vehicle struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	brand       string
	model       string
	year        int
	color       string
	plateNumber string
	notes       string
	status      VehicleStatus
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewVehicle creates a new active vehicle profile with validated fields.
func NewVehicle(
	ownerID uuid.UUID,
	brand, model string,
	year int,
	color, plateNumber, notes string,
) (*Vehicle, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if brand == "" {
		return nil, fmt.Errorf("vehicle brand is required")
	}
	if model == "" {
		return nil, fmt.Errorf("vehicle model is required")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:          uuid.New(),
		ownerID:     ownerID,
		brand:       brand,
		model:       model,
		year:        year,
		color:       color,
		plateNumber: plateNumber,
		notes:       notes,
		status:      VehicleStatusActive,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	brand, model string,
	year int,
	color, plateNumber, notes string,
	status VehicleStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:          id,
		ownerID:     ownerID,
		brand:       brand,
		model:       model,
		year:        year,
		color:       color,
		plateNumber: plateNumber,
		notes:       notes,
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID         { return v.id }
func (v *Vehicle) OwnerID() uuid.UUID    { return v.ownerID }
func (v *Vehicle) Brand() string         { return v.brand }
func (v *Vehicle) Model() string         { return v.model }
func (v *Vehicle) Year() int             { return v.year }
func (v *Vehicle) Color() string         { return v.color }
func (v *Vehicle) PlateNumber() string   { return v.plateNumber }
func (v *Vehicle) Notes() string         { return v.notes }
func (v *Vehicle) Status() VehicleStatus { return v.status }
func (v *Vehicle) Version() int64        { return v.version }
func (v *Vehicle) CreatedAt() time.Time  { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time  { return v.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the vehicle profile belongs to the given owner.
func (v *Vehicle) IsOwnedBy(ownerID uuid.UUID) bool {
	return v.ownerID == ownerID
}

// Update applies partial updates to the vehicle profile.
func (v *Vehicle) Update(brand, model string, year int, color, plateNumber, notes string) {
	if brand != "" {
		v.brand = brand
	}
	if model != "" {
		v.model = model
	}
	if year > 0 {
		v.year = year
	}
	if color != "" {
		v.color = color
	}
	if plateNumber != "" {
		v.plateNumber = plateNumber
	}
	if notes != "" {
		v.notes = notes
	}
	v.version++
	v.updatedAt = time.Now().UTC()
}

// Archive marks the vehicle profile as archived.
func (v *Vehicle) Archive() {
	v.status = VehicleStatusArchived
	v.version++
	v.updatedAt = time.Now().UTC()
}

// IsActive returns true if the vehicle profile is active.
func (v *Vehicle) IsActive() bool {
	return v.status == VehicleStatusActive
}
