package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking lifecycle event types, published on TopicBookingEvents. These feed
// downstream notification delivery (email/push) and dashboards; publication
// is best-effort and never blocks or rolls back a state transition.
const (
	BookingCreated       = "booking.created"
	BookingConfirmed     = "booking.confirmed"
	BookingPaymentFailed = "booking.payment_failed"
	BookingStarted       = "booking.started"
	BookingCompleted     = "booking.completed"
	BookingCancelled     = "booking.cancelled"
	BookingRefunded      = "booking.refunded"
)

// Payment event types, consumed from TopicPaymentEvents.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
	PaymentRefunded  = "payment.refunded"
)

// BookingCreatedEvent is published when a customer submits a priced booking.
type BookingCreatedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	VehicleBrand   string    `json:"vehicle_brand"`
	VehicleModel   string    `json:"vehicle_model"`
	TowTruckClass  string    `json:"tow_truck_class"`
	PickupLat      float64   `json:"pickup_lat"`
	PickupLng      float64   `json:"pickup_lng"`
	DropoffLat     float64   `json:"dropoff_lat"`
	DropoffLng     float64   `json:"dropoff_lng"`
	DistanceKm     float64   `json:"distance_km"`
	TotalCostCents int64     `json:"total_cost_cents"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingStatusEvent is published on confirm/start/complete/cancel/refund and
// on payment failure.
type BookingStatusEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent arrives from the payment collaborator when a charge
// is captured. AmountCents must equal the booking's quoted total.
type PaymentSucceededEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentFailedEvent arrives when a charge attempt fails.
type PaymentFailedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentRefundedEvent arrives when a refund for a cancelled booking clears.
type PaymentRefundedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}
