package application

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/towline/service-towing/internal/common/domain"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
	"github.com/towline/service-towing/internal/dto"
)

// fakeBookingRepo is an in-memory BookingRepository that mirrors the
// version-and-status guard of the real GORM implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID {
			out = append(out, cloneBooking(bk))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, cloneBooking(bk))
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking, expectedPriorStatus bookingDomain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 || stored.Status() != expectedPriorStatus {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	delete(r.bookings, id)
	return nil
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.BookingNumber(), bk.CustomerID(),
		bk.Vehicle(), bk.Pickup(), bk.Dropoff(),
		bk.DistanceKm(), bk.Quote(),
		bk.Status(), bk.PaymentStatus(),
		bk.FailureReason(), bk.CancelNote(), bk.Notes(),
		bk.PaidAt(), bk.StartedAt(), bk.CompletedAt(), bk.CancelledAt(), bk.RefundedAt(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

// fakeNotifier records published event types.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) NotifyCreated(_ context.Context, _ *bookingDomain.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, "booking.created")
}

func (n *fakeNotifier) NotifyStatusChanged(_ context.Context, _ *bookingDomain.Booking, eventType, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *fakeNotifier) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func newTestService(t *testing.T) (*BookingService, *fakeBookingRepo, *fakeNotifier) {
	t.Helper()
	repo := newFakeBookingRepo()
	notifier := &fakeNotifier{}
	svc := NewBookingService(repo, bookingDomain.NewStaticRateCardProvider(), notifier, zap.NewNop())
	return svc, repo, notifier
}

func testQuoteRequest() QuoteRequest {
	return QuoteRequest{
		Vehicle: dto.VehicleDTO{Brand: "Nissan", Model: "Versa", Accessibility: "roadside"},
		Pickup:  dto.LocationDTO{Address: "Av. Insurgentes Sur 1000", Latitude: 19.3729, Longitude: -99.1792},
		Dropoff: dto.LocationDTO{Address: "Calz. de Tlalpan 500", Latitude: 19.3536, Longitude: -99.1442},
	}
}

func createTestBooking(t *testing.T, svc *BookingService) (*BookingDTO, uuid.UUID) {
	t.Helper()
	customerID := uuid.New()
	req := testQuoteRequest()
	result, err := svc.CreateBooking(context.Background(), customerID, CreateBookingRequest{
		Vehicle: req.Vehicle,
		Pickup:  req.Pickup,
		Dropoff: req.Dropoff,
	})
	require.NoError(t, err)
	return result, customerID
}

func TestGetQuote_SmallVehicleClassA(t *testing.T) {
	svc, _, _ := newTestService(t)

	quote, err := svc.GetQuote(context.Background(), testQuoteRequest())
	require.NoError(t, err)

	assert.Equal(t, "small", quote.VehicleSizeClass)
	assert.Equal(t, "A", quote.TowTruckClass)
	assert.False(t, quote.RequiresManeuver)
	assert.Greater(t, quote.DistanceKm, 0.0)
	assert.Greater(t, quote.TotalCostCents, int64(0))
	assert.Equal(t, "MXN", quote.Currency)
}

func TestGetQuote_HeavyTruckObstructed(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := testQuoteRequest()
	req.Vehicle = dto.VehicleDTO{Brand: "Ford", Model: "Ford F-250", Accessibility: "obstructed"}

	quote, err := svc.GetQuote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "large", quote.VehicleSizeClass)
	assert.Equal(t, "D", quote.TowTruckClass)
	assert.True(t, quote.RequiresManeuver)
}

func TestGetQuote_InvalidAccessibility(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := testQuoteRequest()
	req.Vehicle.Accessibility = "buried"

	_, err := svc.GetQuote(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCreateBooking_PersistsAndNotifies(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	result, customerID := createTestBooking(t, svc)

	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "unpaid", result.PaymentStatus)
	assert.Equal(t, customerID, result.CustomerID)

	stored, err := repo.FindByID(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Quote.TotalCostCents, stored.Quote().TotalCostCents)

	assert.Equal(t, []string{"booking.created"}, notifier.recorded())
}

func TestHandlePaymentSucceeded_ConfirmsBooking(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	created, _ := createTestBooking(t, svc)

	result, err := svc.HandlePaymentSucceeded(context.Background(), created.ID, created.Quote.TotalCostCents)
	require.NoError(t, err)

	assert.Equal(t, "confirmed", result.Status)
	assert.Equal(t, "paid", result.PaymentStatus)
	assert.NotNil(t, result.PaidAt)
	assert.Equal(t, created.Version+1, result.Version)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())

	assert.Contains(t, notifier.recorded(), "booking.confirmed")
}

func TestHandlePaymentSucceeded_AmountMismatch(t *testing.T) {
	svc, repo, _ := newTestService(t)
	created, _ := createTestBooking(t, svc)

	_, err := svc.HandlePaymentSucceeded(context.Background(), created.ID, created.Quote.TotalCostCents+100)
	require.Error(t, err)
	assert.Equal(t, domain.KindPaymentMismatch, domain.KindOf(err))

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, stored.Status())
	assert.Equal(t, bookingDomain.PaymentUnpaid, stored.PaymentStatus())
	assert.Equal(t, created.Version, stored.Version())
}

func TestHandlePaymentFailed_ThenRetry(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, customerID := createTestBooking(t, svc)

	result, err := svc.HandlePaymentFailed(context.Background(), created.ID, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "failed", result.PaymentStatus)
	assert.Equal(t, "insufficient funds", result.FailureReason)

	result, err = svc.RetryPayment(context.Background(), created.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, "unpaid", result.PaymentStatus)
	assert.Empty(t, result.FailureReason)
}

func TestRetryPayment_WrongCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, _ := createTestBooking(t, svc)

	require.NoError(t, errOnly(svc.HandlePaymentFailed(context.Background(), created.ID, "declined")))

	_, err := svc.RetryPayment(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestCancelBooking_CustomerOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, customerID := createTestBooking(t, svc)

	// A stranger cannot cancel.
	_, err := svc.CancelBooking(context.Background(), created.ID, uuid.New(), bookingDomain.ActorCustomer, "")
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// The owner can.
	result, err := svc.CancelBooking(context.Background(), created.ID, customerID, bookingDomain.ActorCustomer, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)
	assert.Equal(t, "changed plans", result.CancelNote)
}

func TestCancelBooking_AdminCanCancelAny(t *testing.T) {
	svc, _, notifier := newTestService(t)
	created, _ := createTestBooking(t, svc)

	result, err := svc.CancelBooking(context.Background(), created.ID, uuid.New(), bookingDomain.ActorAdmin, "no truck available")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)
	assert.Contains(t, notifier.recorded(), "booking.cancelled")
}

func TestFullServiceFlow(t *testing.T) {
	svc, _, notifier := newTestService(t)
	created, _ := createTestBooking(t, svc)

	_, err := svc.HandlePaymentSucceeded(context.Background(), created.ID, created.Quote.TotalCostCents)
	require.NoError(t, err)

	result, err := svc.StartService(context.Background(), created.ID, bookingDomain.ActorAdmin)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", result.Status)

	result, err = svc.FinishService(context.Background(), created.ID, bookingDomain.ActorAdmin)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.NotNil(t, result.CompletedAt)

	assert.Equal(t,
		[]string{"booking.created", "booking.confirmed", "booking.started", "booking.completed"},
		notifier.recorded(),
	)
}

func TestConfirmRefund_AfterPaidCancel(t *testing.T) {
	svc, _, notifier := newTestService(t)
	created, customerID := createTestBooking(t, svc)

	_, err := svc.HandlePaymentSucceeded(context.Background(), created.ID, created.Quote.TotalCostCents)
	require.NoError(t, err)
	_, err = svc.CancelBooking(context.Background(), created.ID, customerID, bookingDomain.ActorCustomer, "")
	require.NoError(t, err)

	result, err := svc.ConfirmRefund(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)
	assert.Equal(t, "refunded", result.PaymentStatus)
	assert.NotNil(t, result.RefundedAt)

	assert.Contains(t, notifier.recorded(), "booking.refunded")
}

func TestConcurrentTransitions_OnlyOneWins(t *testing.T) {
	svc, repo, _ := newTestService(t)
	created, customerID := createTestBooking(t, svc)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.HandlePaymentSucceeded(context.Background(), created.ID, created.Quote.TotalCostCents)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.CancelBooking(context.Background(), created.ID, customerID, bookingDomain.ActorCustomer, "race")
	}()
	wg.Wait()

	// Exactly one of the two transitions may commit, or both succeed in
	// sequence if they did not interleave. Never may both rewrite the same
	// version.
	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	succeeded := 0
	for _, e := range errs {
		if e == nil {
			succeeded++
		} else {
			// The loser sees either a write conflict or an illegal transition,
			// depending on when it loaded the booking.
			assert.NotEmpty(t, domain.KindOf(e), "unexpected infrastructure error: %v", e)
		}
	}
	require.GreaterOrEqual(t, succeeded, 1)
	assert.Equal(t, created.Version+int64(succeeded), stored.Version())
}

func TestUpdate_StaleSnapshotConflicts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	created, _ := createTestBooking(t, svc)
	ctx := context.Background()

	// Two readers load the same pending booking.
	first, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, first.RecordPaymentSucceeded(first.Quote().TotalCostCents))
	first.IncrementVersion()
	require.NoError(t, repo.Update(ctx, first, bookingDomain.StatusPending))

	// The second writer still holds the pending snapshot; its update must
	// fail rather than overwrite the confirmed booking.
	require.NoError(t, second.Cancel(bookingDomain.ActorCustomer, "stale snapshot"))
	second.IncrementVersion()
	err = repo.Update(ctx, second, bookingDomain.StatusPending)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())
	assert.Equal(t, created.Version+1, stored.Version())
}

func TestGetBookingStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	a, _ := createTestBooking(t, svc)
	createTestBooking(t, svc)

	_, err := svc.HandlePaymentSucceeded(context.Background(), a.ID, a.Quote.TotalCostCents)
	require.NoError(t, err)

	stats, err := svc.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
}

func TestDeleteBooking(t *testing.T) {
	svc, repo, _ := newTestService(t)
	created, _ := createTestBooking(t, svc)

	require.NoError(t, svc.DeleteBooking(context.Background(), created.ID))

	_, err := repo.FindByID(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = svc.DeleteBooking(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func errOnly(_ *BookingDTO, err error) error { return err }
