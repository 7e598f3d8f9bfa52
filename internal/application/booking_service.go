package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/towline/service-towing/internal/common/domain"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
	"github.com/towline/service-towing/internal/dto"
)

// QuoteRequest holds the data needed to price a tow.
type QuoteRequest struct {
	Vehicle dto.VehicleDTO  `json:"vehicle" binding:"required"`
	Pickup  dto.LocationDTO `json:"pickup" binding:"required"`
	Dropoff dto.LocationDTO `json:"dropoff" binding:"required"`
}

// QuoteDTO is the response representation of a price quote.
type QuoteDTO struct {
	VehicleSizeClass string  `json:"vehicle_size_class"`
	TowTruckClass    string  `json:"tow_truck_class"`
	DistanceKm       float64 `json:"distance_km"`
	RequiresManeuver bool    `json:"requires_maneuver"`
	TotalCostCents   int64   `json:"total_cost_cents"`
	Currency         string  `json:"currency"`
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Vehicle dto.VehicleDTO  `json:"vehicle" binding:"required"`
	Pickup  dto.LocationDTO `json:"pickup" binding:"required"`
	Dropoff dto.LocationDTO `json:"dropoff" binding:"required"`
	Notes   string          `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID                       `json:"id"`
	BookingNumber string                          `json:"booking_number"`
	CustomerID    uuid.UUID                       `json:"customer_id"`
	Vehicle       bookingDomain.VehicleDescriptor `json:"vehicle"`
	Pickup        dto.LocationDTO                 `json:"pickup"`
	Dropoff       dto.LocationDTO                 `json:"dropoff"`
	DistanceKm    float64                         `json:"distance_km"`
	Quote         bookingDomain.Quote             `json:"quote"`
	Status        string                          `json:"status"`
	PaymentStatus string                          `json:"payment_status"`
	FailureReason string                          `json:"failure_reason,omitempty"`
	CancelNote    string                          `json:"cancel_note,omitempty"`
	Notes         string                          `json:"notes,omitempty"`
	PaidAt        *time.Time                      `json:"paid_at,omitempty"`
	StartedAt     *time.Time                      `json:"started_at,omitempty"`
	CompletedAt   *time.Time                      `json:"completed_at,omitempty"`
	CancelledAt   *time.Time                      `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time                      `json:"refunded_at,omitempty"`
	Version       int64                           `json:"version"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

// Notifier publishes booking lifecycle events. Delivery is best-effort:
// implementations log failures but the caller never sees them.
type Notifier interface {
	NotifyCreated(ctx context.Context, bk *bookingDomain.Booking)
	NotifyStatusChanged(ctx context.Context, bk *bookingDomain.Booking, eventType, reason string)
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	rateCards bookingDomain.RateCardProvider
	notifier  Notifier
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	rateCards bookingDomain.RateCardProvider,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		rateCards: rateCards,
		notifier:  notifier,
		logger:    logger,
	}
}

// GetQuote prices a tow without creating a booking.
func (s *BookingService) GetQuote(ctx context.Context, req QuoteRequest) (*QuoteDTO, error) {
	vehicle, err := buildVehicleDescriptor(req.Vehicle)
	if err != nil {
		return nil, err
	}

	quote, sizeClass, err := s.priceTow(ctx, vehicle, req.Pickup, req.Dropoff)
	if err != nil {
		return nil, err
	}

	return &QuoteDTO{
		VehicleSizeClass: string(sizeClass),
		TowTruckClass:    string(quote.TowTruckClass),
		DistanceKm:       quote.DistanceKm,
		RequiresManeuver: quote.RequiresManeuver,
		TotalCostCents:   quote.TotalCostCents,
		Currency:         domain.CurrencyMXN,
	}, nil
}

// CreateBooking creates a new booking for the given customer, snapshotting
// the quote at creation time.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	vehicle, err := buildVehicleDescriptor(req.Vehicle)
	if err != nil {
		return nil, err
	}

	quote, _, err := s.priceTow(ctx, vehicle, req.Pickup, req.Dropoff)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		customerID,
		vehicle,
		req.Pickup,
		req.Dropoff,
		quote.DistanceKm,
		quote,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.notifier.NotifyCreated(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// HandlePaymentSucceeded confirms a pending booking after the payment
// collaborator captures a charge matching the quoted total.
func (s *BookingService) HandlePaymentSucceeded(ctx context.Context, bookingID uuid.UUID, amountCents int64) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.confirmed", "", func(bk *bookingDomain.Booking) error {
		return bk.RecordPaymentSucceeded(amountCents)
	})
}

// HandlePaymentFailed records a failed charge, keeping the booking pending
// so the customer may retry.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.payment_failed", reason, func(bk *bookingDomain.Booking) error {
		return bk.RecordPaymentFailed(reason)
	})
}

// RetryPayment resets a failed payment back to unpaid. Only the owning
// customer may retry.
func (s *BookingService) RetryPayment(ctx context.Context, bookingID, customerID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "", "", func(bk *bookingDomain.Booking) error {
		if !bk.IsOwnedBy(customerID) {
			return domain.NewForbiddenError("booking does not belong to this user")
		}
		return bk.RetryPayment(bookingDomain.ActorCustomer)
	})
}

// StartService marks a confirmed tow as underway (admin only).
func (s *BookingService) StartService(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.started", "", func(bk *bookingDomain.Booking) error {
		return bk.StartService(actor)
	})
}

// FinishService marks an in-progress tow as completed (admin only).
func (s *BookingService) FinishService(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.completed", "", func(bk *bookingDomain.Booking) error {
		return bk.FinishService(actor)
	})
}

// CancelBooking cancels a booking that is not yet in a terminal state.
// Customers may only cancel their own bookings; admins may cancel any.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID, actor bookingDomain.Actor, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.cancelled", reason, func(bk *bookingDomain.Booking) error {
		if actor == bookingDomain.ActorCustomer && !bk.IsOwnedBy(requesterID) {
			return domain.NewForbiddenError("booking does not belong to this user")
		}
		return bk.Cancel(actor, reason)
	})
}

// ConfirmRefund records a confirmed refund on a cancelled, paid booking.
func (s *BookingService) ConfirmRefund(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, "booking.refunded", "", func(bk *bookingDomain.Booking) error {
		return bk.ConfirmRefund()
	})
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a single booking by its human-readable number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a specific customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// DeleteBooking hard-deletes a booking (admin only).
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, bookingID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	s.logger.Info("booking deleted", zap.String("booking_id", bookingID.String()))
	return nil
}

// --- Helpers ---

// transition loads the booking, applies the mutation, and persists it
// conditionally on the status it had before the mutation. Notification is
// fire-and-forget: a publish failure never rolls the transition back.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	eventType, reason string,
	mutate func(bk *bookingDomain.Booking) error,
) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	priorStatus := bk.Status()
	if err := mutate(bk); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk, priorStatus); err != nil {
		return nil, err
	}

	if eventType != "" {
		s.notifier.NotifyStatusChanged(ctx, bk, eventType, reason)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// priceTow classifies the vehicle, resolves the rate card and computes the quote.
func (s *BookingService) priceTow(
	ctx context.Context,
	vehicle bookingDomain.VehicleDescriptor,
	pickup, dropoff dto.LocationDTO,
) (bookingDomain.Quote, bookingDomain.VehicleSizeClass, error) {
	sizeClass := bookingDomain.ClassifyVehicleSize(vehicle.Model)
	truckClass := bookingDomain.SelectTowTruckClass(sizeClass)

	card, err := s.rateCards.RateCard(ctx, truckClass)
	if err != nil {
		return bookingDomain.Quote{}, "", fmt.Errorf("failed to load rate card: %w", err)
	}

	distanceKm := haversineDistance(
		pickup.Latitude, pickup.Longitude,
		dropoff.Latitude, dropoff.Longitude,
	)

	quote, err := bookingDomain.ComputeQuote(distanceKm, truckClass, vehicle.RequiresManeuver(), card)
	if err != nil {
		return bookingDomain.Quote{}, "", err
	}
	return quote, sizeClass, nil
}

func buildVehicleDescriptor(v dto.VehicleDTO) (bookingDomain.VehicleDescriptor, error) {
	descriptor := bookingDomain.VehicleDescriptor{
		Brand:         v.Brand,
		Model:         v.Model,
		Accessibility: bookingDomain.Accessibility(v.Accessibility),
	}
	if !descriptor.Accessibility.IsValid() {
		return bookingDomain.VehicleDescriptor{}, domain.NewValidationError(
			fmt.Sprintf("invalid accessibility: %q", v.Accessibility))
	}
	return descriptor, nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		Vehicle:       bk.Vehicle(),
		Pickup:        bk.Pickup(),
		Dropoff:       bk.Dropoff(),
		DistanceKm:    bk.DistanceKm(),
		Quote:         bk.Quote(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		FailureReason: bk.FailureReason(),
		CancelNote:    bk.CancelNote(),
		Notes:         bk.Notes(),
		PaidAt:        bk.PaidAt(),
		StartedAt:     bk.StartedAt(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
		RefundedAt:    bk.RefundedAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

// haversineDistance calculates the distance between two coordinates in kilometers.
func haversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
