package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meserte/services/billing"
	"meserte/services/booking"
	"meserte/utils"
)

// BillingHandler exposes the running bill and checkout over HTTP.
type BillingHandler struct {
	Service   billing.AggregatorService
	Lifecycle booking.LifecycleService
	Logger    *zap.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(svc billing.AggregatorService, lifecycle booking.LifecycleService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{Service: svc, Lifecycle: lifecycle, Logger: logger}
}

// GetBill handles GET /api/bookings/:id/bill. The view folds the room's
// pending food orders into the stored invoice.
func (h *BillingHandler) GetBill(c *gin.Context) {
	bill, err := h.Service.CurrentBill(c.Param("id"))
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": bill})
}

// AddCharge handles POST /api/invoices/:id/charges.
func (h *BillingHandler) AddCharge(c *gin.Context) {
	var req struct {
		Description string  `json:"description" binding:"required"`
		Quantity    int     `json:"quantity" binding:"required"`
		UnitPrice   float64 `json:"unitPrice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	inv, err := h.Service.AddCharge(c.Param("id"), req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// Checkout handles POST /api/invoices/:id/settle: the invoice is settled
// exactly once, then the stay is completed and the room released and flagged
// for housekeeping.
func (h *BillingHandler) Checkout(c *gin.Context) {
	var req struct {
		PaymentMethod string `json:"paymentMethod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	inv, err := h.Service.Settle(c.Param("id"), req.PaymentMethod)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	b, err := h.Lifecycle.CompleteStay(inv.BookingID)
	if err != nil {
		// The invoice is settled; the stay transition is what failed.
		h.Logger.Error("checkout settled invoice but could not complete stay",
			zap.String("invoiceID", inv.ID),
			zap.String("bookingID", inv.BookingID),
			zap.Error(err))
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv, "booking": b})
}

// respondBillingError maps billing errors onto HTTP statuses.
func respondBillingError(c *gin.Context, err error) {
	var be *billing.BillingError
	if !errors.As(err, &be) {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "the request could not be processed")
		return
	}

	switch be {
	case billing.ErrBookingNotFound, billing.ErrInvoiceNotFound:
		utils.JSONError(c, http.StatusNotFound, be.Message, be.Code)
	case billing.ErrInvalidCharge:
		utils.JSONError(c, http.StatusBadRequest, be.Message, be.Code)
	case billing.ErrBookingNotConfirmed, billing.ErrInvoiceClosed, billing.ErrAlreadySettled:
		utils.JSONError(c, http.StatusConflict, be.Message, be.Code)
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", be.Code)
	}
}
