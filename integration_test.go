//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingEvents "github.com/towline/service-towing/internal/events"
)

// TestPaymentSucceeded_ConfirmsBooking verifies that when a PaymentSucceededEvent
// matching the quoted total is published to payment.events, the towing service
// picks it up and transitions the booking to confirmed/paid.
func TestPaymentSucceeded_ConfirmsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a booking in pending/unpaid with a known quoted total.
	bookingID := uuid.New()
	customerID := uuid.New()
	const quotedTotal = int64(71689)
	seedPendingBooking(t, infra.DB, bookingID, customerID, quotedTotal)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish PaymentSucceededEvent with the exact quoted amount.
	evt := bookingEvents.PaymentSucceededEvent{
		PaymentID:   uuid.New(),
		BookingID:   bookingID,
		AmountCents: quotedTotal,
		Currency:    "MXN",
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentSucceeded, evt)

	// Assert: booking transitions to confirmed/paid.
	model := waitForBookingStatus(t, infra.DB, bookingID, "confirmed", 15*time.Second)
	assert.Equal(t, "paid", model.PaymentStatus)
	assert.NotNil(t, model.PaidAt, "paid_at should be set")
	assert.Equal(t, int64(2), model.Version)

	// Assert: BookingConfirmedEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingConfirmed, 15*time.Second)

	var confirmed bookingEvents.BookingStatusEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, bookingID, confirmed.BookingID)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "paid", confirmed.PaymentStatus)
}

// TestPaymentSucceeded_AmountMismatchLeavesBookingPending verifies that a
// captured amount different from the quoted total does not confirm the booking.
func TestPaymentSucceeded_AmountMismatchLeavesBookingPending(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	bookingID := uuid.New()
	customerID := uuid.New()
	seedPendingBooking(t, infra.DB, bookingID, customerID, 71689)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	// One cent short.
	evt := bookingEvents.PaymentSucceededEvent{
		PaymentID:   uuid.New(),
		BookingID:   bookingID,
		AmountCents: 71688,
		Currency:    "MXN",
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentSucceeded, evt)

	// The booking must stay pending/unpaid. Give the consumer time to process.
	time.Sleep(8 * time.Second)
	model := waitForBookingStatus(t, infra.DB, bookingID, "pending", 5*time.Second)
	assert.Equal(t, "unpaid", model.PaymentStatus)
	assert.Equal(t, int64(1), model.Version)
}
