package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/towline/service-towing/internal/application"
	"github.com/towline/service-towing/internal/common/auth"
	"github.com/towline/service-towing/internal/common/middleware"
	"github.com/towline/service-towing/internal/common/response"
	bookingDomain "github.com/towline/service-towing/internal/domain/booking"
)

// RateCardStore exposes admin read/write access to the stored rate table.
type RateCardStore interface {
	ListAll(ctx context.Context) (map[bookingDomain.TowTruckClass]bookingDomain.RateCard, error)
	Update(ctx context.Context, class bookingDomain.TowTruckClass, card bookingDomain.RateCard) error
}

// AdminHandler handles admin HTTP requests: booking management, stats and
// rate card administration.
type AdminHandler struct {
	service   *application.BookingService
	rateCards RateCardStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService, rateCards RateCardStore) *AdminHandler {
	return &AdminHandler{service: service, rateCards: rateCards}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/bookings/:id/start", h.StartService)
		admin.POST("/bookings/:id/finish", h.FinishService)
		admin.DELETE("/bookings/:id", h.DeleteBooking)
		admin.GET("/rate-cards", h.ListRateCards)
		admin.PUT("/rate-cards/:class", h.UpdateRateCard)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// StartService handles POST /api/v1/admin/bookings/:id/start.
func (h *AdminHandler) StartService(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.StartService(c.Request.Context(), bookingID, bookingDomain.ActorAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// FinishService handles POST /api/v1/admin/bookings/:id/finish.
func (h *AdminHandler) FinishService(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.FinishService(c.Request.Context(), bookingID, bookingDomain.ActorAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBooking handles DELETE /api/v1/admin/bookings/:id.
func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": bookingID})
}

// ListRateCards handles GET /api/v1/admin/rate-cards.
func (h *AdminHandler) ListRateCards(c *gin.Context) {
	cards, err := h.rateCards.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cards)
}

// UpdateRateCard handles PUT /api/v1/admin/rate-cards/:class. Stored quotes
// on existing bookings are unaffected.
func (h *AdminHandler) UpdateRateCard(c *gin.Context) {
	class := bookingDomain.TowTruckClass(c.Param("class"))
	if !class.IsValid() {
		response.BadRequest(c, "invalid tow truck class")
		return
	}

	var card bookingDomain.RateCard
	if err := c.ShouldBindJSON(&card); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if card.BasePriceCents <= 0 || card.PerKmRateCents <= 0 || card.ManeuverChargeCents < 0 {
		response.BadRequest(c, "rate card amounts must be positive")
		return
	}

	if err := h.rateCards.Update(c.Request.Context(), class, card); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, card)
}
