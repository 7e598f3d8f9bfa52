package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/towline/service-towing/internal/common/domain"
	"github.com/towline/service-towing/internal/dto"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the towing booking domain. Its status and
// payment status are mutated only through the lifecycle methods below, which
// all route through the central transition table; the two fields and
// updatedAt always change together.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	customerID    uuid.UUID
	vehicle       VehicleDescriptor
	pickup        dto.LocationDTO
	dropoff       dto.LocationDTO
	distanceKm    float64
	quote         Quote
	status        BookingStatus
	paymentStatus PaymentStatus

	failureReason string
	cancelNote    string
	notes         string

	paidAt      *time.Time
	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	refundedAt  *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "TW-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "TW-" + string(result), nil
}

// NewBooking creates a new Booking in pending/unpaid with the quote snapshot
// taken at creation time. Later rate-card changes never alter a stored quote.
func NewBooking(
	customerID uuid.UUID,
	vehicle VehicleDescriptor,
	pickup, dropoff dto.LocationDTO,
	distanceKm float64,
	quote Quote,
	notes string,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if vehicle.Brand == "" || vehicle.Model == "" {
		return nil, domain.NewValidationError("vehicle brand and model are required")
	}
	if !vehicle.Accessibility.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid accessibility: %s", vehicle.Accessibility))
	}
	if pickup.Address == "" {
		return nil, domain.NewValidationError("pickup location is required")
	}
	if dropoff.Address == "" {
		return nil, domain.NewValidationError("dropoff location is required")
	}
	if distanceKm < 0 {
		return nil, domain.NewValidationError("distance cannot be negative")
	}
	if quote.TotalCostCents <= 0 {
		return nil, domain.NewValidationError("quoted total must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		customerID:    customerID,
		vehicle:       vehicle,
		pickup:        pickup,
		dropoff:       dropoff,
		distanceKm:    distanceKm,
		quote:         quote,
		status:        StatusPending,
		paymentStatus: PaymentUnpaid,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	customerID uuid.UUID,
	vehicle VehicleDescriptor,
	pickup, dropoff dto.LocationDTO,
	distanceKm float64,
	quote Quote,
	status BookingStatus,
	paymentStatus PaymentStatus,
	failureReason, cancelNote, notes string,
	paidAt, startedAt, completedAt, cancelledAt, refundedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		customerID:    customerID,
		vehicle:       vehicle,
		pickup:        pickup,
		dropoff:       dropoff,
		distanceKm:    distanceKm,
		quote:         quote,
		status:        status,
		paymentStatus: paymentStatus,
		failureReason: failureReason,
		cancelNote:    cancelNote,
		notes:         notes,
		paidAt:        paidAt,
		startedAt:     startedAt,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
		refundedAt:    refundedAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerID returns the owning customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// Vehicle returns the vehicle descriptor.
func (b *Booking) Vehicle() VehicleDescriptor { return b.vehicle }

// Pickup returns the pickup location.
func (b *Booking) Pickup() dto.LocationDTO { return b.pickup }

// Dropoff returns the dropoff location.
func (b *Booking) Dropoff() dto.LocationDTO { return b.dropoff }

// DistanceKm returns the route distance in kilometers.
func (b *Booking) DistanceKm() float64 { return b.distanceKm }

// Quote returns the price quote snapshotted at creation time.
func (b *Booking) Quote() Quote { return b.quote }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// FailureReason returns the last payment failure reason, if any.
func (b *Booking) FailureReason() string { return b.failureReason }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// PaidAt returns the time payment was captured.
func (b *Booking) PaidAt() *time.Time { return b.paidAt }

// StartedAt returns the time the tow service started.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// CompletedAt returns the time the tow service finished.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// RefundedAt returns the time the refund was confirmed.
func (b *Booking) RefundedAt() *time.Time { return b.refundedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy checks whether the booking belongs to the given customer.
func (b *Booking) IsOwnedBy(customerID uuid.UUID) bool {
	return b.customerID == customerID
}

// --- Lifecycle ---

// apply runs one lifecycle event through the transition table. The state
// check comes before the actor check: an event that is illegal from the
// current state reports an invalid-state error regardless of who sent it.
func (b *Booking) apply(ev Event, actor Actor) error {
	from := stateKey{b.status, b.paymentStatus}
	rule, ok := nextState(from, ev)
	if !ok {
		return domain.NewInvalidStateError(from.String(), string(ev))
	}
	if !rule.allowedActor(actor) {
		return domain.NewForbiddenError(fmt.Sprintf("actor %s may not apply %s", actor, ev))
	}

	b.status = rule.to.status
	if rule.to.payment != paymentPreserved {
		b.paymentStatus = rule.to.payment
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// RecordPaymentSucceeded applies a successful payment event. The paid amount
// must match the quoted total; a mismatch fails without touching state. On
// success the booking advances directly to confirmed/paid.
func (b *Booking) RecordPaymentSucceeded(amountCents int64) error {
	if b.status == StatusPending && b.paymentStatus == PaymentUnpaid && amountCents != b.quote.TotalCostCents {
		return domain.NewPaymentMismatchError(b.quote.TotalCostCents, amountCents)
	}
	if err := b.apply(EventPaymentSucceeded, ActorPaymentSystem); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.paidAt = &now
	b.failureReason = ""
	return nil
}

// RecordPaymentFailed applies a failed payment event, keeping the booking
// pending so the customer can retry.
func (b *Booking) RecordPaymentFailed(reason string) error {
	if err := b.apply(EventPaymentFailed, ActorPaymentSystem); err != nil {
		return err
	}
	b.failureReason = reason
	return nil
}

// RetryPayment resets a failed payment back to unpaid.
func (b *Booking) RetryPayment(actor Actor) error {
	if err := b.apply(EventRetryPayment, actor); err != nil {
		return err
	}
	b.failureReason = ""
	return nil
}

// StartService marks the tow as underway.
func (b *Booking) StartService(actor Actor) error {
	if err := b.apply(EventStartService, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.startedAt = &now
	return nil
}

// FinishService marks the tow as completed.
func (b *Booking) FinishService(actor Actor) error {
	if err := b.apply(EventFinishService, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.completedAt = &now
	return nil
}

// Cancel cancels the booking from any non-terminal state. The payment status
// is left untouched; a captured payment stays "paid" until the payment
// collaborator confirms the refund.
func (b *Booking) Cancel(actor Actor, reason string) error {
	if err := b.apply(EventCancel, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.cancelNote = reason
	b.cancelledAt = &now
	return nil
}

// ConfirmRefund records a confirmed refund on a cancelled, paid booking.
// This is deliberately not a transition-table event: terminal states accept
// no lifecycle events, and a refund only changes the payment side.
func (b *Booking) ConfirmRefund() error {
	if b.status != StatusCancelled || b.paymentStatus != PaymentPaid {
		from := stateKey{b.status, b.paymentStatus}
		return domain.NewInvalidStateError(from.String(), "confirm_refund")
	}
	now := time.Now().UTC()
	b.paymentStatus = PaymentRefunded
	b.refundedAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
