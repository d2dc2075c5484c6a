package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meserte/services/payment"
	"meserte/utils"
)

// PaymentHandler exposes the gateway handshake over HTTP: initiation, the
// asynchronous webhook, and the return-URL poll.
type PaymentHandler struct {
	Service payment.ReconcilerService
	Logger  *zap.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(svc payment.ReconcilerService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: svc, Logger: logger}
}

// InitiatePayment handles POST /api/payments/initiate. The optional amount is
// only an integrity check; the booking's stored total is what gets charged.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req struct {
		BookingID string   `json:"bookingId" binding:"required"`
		Amount    *float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Service.Initiate(c.Request.Context(), req.BookingID, req.Amount)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"redirectUrl": result.RedirectURL,
		"reference":   result.Reference,
	})
}

// Webhook handles POST /api/payments/webhook, the gateway's at-least-once
// callback. It answers 200 even when the outcome was already applied, so the
// gateway stops retrying; only genuinely malformed payloads get a 4xx.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload struct {
		Reference string `json:"reference"`
		Data      struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "malformed webhook payload", err.Error())
		return
	}

	reference := payload.Reference
	if reference == "" {
		reference = payload.Data.Reference
	}
	if reference == "" {
		utils.JSONError(c, http.StatusBadRequest, "malformed webhook payload", "missing reference")
		return
	}

	result, err := h.Service.Verify(c.Request.Context(), reference)
	if err != nil {
		// Internal trouble is ours to reconcile, not the gateway's to retry.
		h.Logger.Error("webhook verification failed",
			zap.String("reference", reference), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "accepted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": result.Outcome})
}

// VerifyPayment handles GET /api/payments/verify/:reference, the return-URL
// poll. It runs the same idempotent verification as the webhook.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	result, err := h.Service.Verify(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": result})
}

// respondPaymentError maps reconciler errors onto HTTP statuses. Gateway
// detail never reaches the guest; they get a generic retry message.
func respondPaymentError(c *gin.Context, err error) {
	var re *payment.ReconcileError
	if !errors.As(err, &re) {
		utils.JSONError(c, http.StatusBadGateway, "payment could not be completed, please retry", "gateway error")
		return
	}

	switch re {
	case payment.ErrUnknownReference:
		utils.JSONError(c, http.StatusNotFound, re.Message, re.Code)
	case payment.ErrAlreadyProcessed:
		utils.JSONError(c, http.StatusConflict, re.Message, re.Code)
	case payment.ErrAmountMismatch:
		utils.JSONError(c, http.StatusBadRequest, re.Message, re.Code)
	case payment.ErrGatewayUnconfigured:
		utils.JSONError(c, http.StatusServiceUnavailable, re.Message, re.Code)
	case payment.ErrGatewayTimeout:
		utils.JSONError(c, http.StatusAccepted, "payment is still being processed", re.Code)
	default:
		utils.JSONError(c, http.StatusBadGateway, "payment could not be completed, please retry", re.Code)
	}
}
