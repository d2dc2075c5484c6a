package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meserte/services/booking"
	"meserte/utils"
)

// BookingHandler exposes the reservation lifecycle over HTTP.
type BookingHandler struct {
	Service booking.LifecycleService
	Logger  *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(svc booking.LifecycleService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.Create(req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.GetByID(c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListGuestBookings handles GET /api/guests/:id/bookings.
func (h *BookingHandler) ListGuestBookings(c *gin.Context) {
	bookings, err := h.Service.ListForGuest(c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req struct {
		RequesterID string `json:"requesterId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Service.Cancel(c.Param("id"), req.RequesterID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	resp := gin.H{"booking": result.Booking}
	if result.RefundAmount > 0 {
		resp["refundAmount"] = result.RefundAmount
	}
	if result.RefundWarning != "" {
		resp["warning"] = result.RefundWarning
	}
	c.JSON(http.StatusOK, resp)
}

// respondBookingError maps lifecycle errors onto HTTP statuses. Validation
// errors land on 400, missing resources on 404, conflicts and invariant
// violations on 409; everything else is an internal error with a generic body.
func respondBookingError(c *gin.Context, err error) {
	var le *booking.LifecycleError
	if !errors.As(err, &le) {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "the request could not be processed")
		return
	}

	switch le {
	case booking.ErrInvalidDateRange:
		utils.JSONError(c, http.StatusBadRequest, le.Message, le.Code)
	case booking.ErrRoomNotFound, booking.ErrBookingNotFound:
		utils.JSONError(c, http.StatusNotFound, le.Message, le.Code)
	case booking.ErrRoomUnavailable, booking.ErrOverlapConflict,
		booking.ErrInvalidTransition, booking.ErrInvoiceUnsettled:
		utils.JSONError(c, http.StatusConflict, le.Message, le.Code)
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", le.Code)
	}
}
