package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/towline/service-towing/internal/common/domain"
	"github.com/towline/service-towing/internal/common/kafka"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
)

// eventSource identifies this service in CloudEvent envelopes.
const eventSource = "towline/service-towing"

// BookingEventPublisher publishes booking lifecycle events to Kafka. Delivery
// is best-effort: failures are logged and never surfaced to the caller, so a
// broker outage cannot roll back a committed state transition.
type BookingEventPublisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewBookingEventPublisher creates a new BookingEventPublisher.
func NewBookingEventPublisher(producer *kafka.Producer, logger *zap.Logger) *BookingEventPublisher {
	return &BookingEventPublisher{
		producer: producer,
		logger:   logger,
	}
}

// NotifyCreated publishes a BookingCreatedEvent.
func (p *BookingEventPublisher) NotifyCreated(ctx context.Context, bk *bookingDomain.Booking) {
	quote := bk.Quote()
	payload := BookingCreatedEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		CustomerID:     bk.CustomerID(),
		VehicleBrand:   bk.Vehicle().Brand,
		VehicleModel:   bk.Vehicle().Model,
		TowTruckClass:  string(quote.TowTruckClass),
		PickupLat:      bk.Pickup().Latitude,
		PickupLng:      bk.Pickup().Longitude,
		DropoffLat:     bk.Dropoff().Latitude,
		DropoffLng:     bk.Dropoff().Longitude,
		DistanceKm:     bk.DistanceKm(),
		TotalCostCents: quote.TotalCostCents,
		Currency:       domain.CurrencyMXN,
		OccurredAt:     time.Now().UTC(),
	}
	p.publish(ctx, BookingCreated, bk.BookingNumber(), payload)
}

// NotifyStatusChanged publishes a BookingStatusEvent for the given event type.
func (p *BookingEventPublisher) NotifyStatusChanged(ctx context.Context, bk *bookingDomain.Booking, eventType, reason string) {
	payload := BookingStatusEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
	p.publish(ctx, eventType, bk.BookingNumber(), payload)
}

func (p *BookingEventPublisher) publish(ctx context.Context, eventType, bookingNumber string, payload any) {
	event, err := kafka.NewCloudEvent(eventSource, eventType, payload)
	if err != nil {
		p.logger.Error("failed to build cloud event",
			zap.String("event_type", eventType),
			zap.String("booking_number", bookingNumber),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, TopicBookingEvents, event); err != nil {
		p.logger.Error("failed to publish booking event",
			zap.String("event_type", eventType),
			zap.String("booking_number", bookingNumber),
			zap.Error(err),
		)
	}
}
