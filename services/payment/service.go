package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "meserte/database/repository/booking"
	"meserte/models"
	"meserte/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// referencePrefix marks transaction references issued by this system. The
// booking id is embedded so a reference alone identifies its booking even if
// the database write after the outbound call was lost.
const referencePrefix = "MSRT"

// Lifecycle is the slice of the booking service the reconciler drives.
type Lifecycle interface {
	Confirm(bookingID string) (*models.Booking, error)
	MarkPaymentFailed(bookingID string) (*models.Booking, error)
}

// ReconcilerService drives the external-gateway payment handshake.
type ReconcilerService interface {
	// Initiate opens a hosted checkout for the booking. declaredAmount, when
	// non-nil, is only an integrity check against the stored total.
	Initiate(ctx context.Context, bookingID string, declaredAmount *float64) (*models.InitiateResult, error)
	// Verify resolves a reference from either a webhook push or an explicit
	// poll; both run the same idempotent transition.
	Verify(ctx context.Context, reference string) (*models.VerifyResult, error)
	// Refund is best-effort: failures are logged with full context and
	// returned for the caller to downgrade.
	Refund(booking *models.Booking, amount float64) error
	// Probe reports the gateway-side outcome of a reference without applying
	// any transition. Used by the reconciliation sweep.
	Probe(reference string) (models.PaymentOutcome, error)
}

// DefaultReconcilerService implements ReconcilerService.
type DefaultReconcilerService struct {
	Gateway     PaymentGateway
	Bookings    bookingRepo.BookingRepository
	Lifecycle   Lifecycle
	Currency    string
	CallbackURL string
	// Timeout bounds every outbound gateway call. On timeout the attempt is
	// left pending, never failed: the charge may have succeeded gateway-side.
	Timeout time.Duration
}

func (s *DefaultReconcilerService) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return s.Timeout
}

// Initiate refuses unless payment is pending and no attempt is active. The
// reference is persisted on the booking BEFORE the outbound call, so a crash
// after the call is recoverable by re-querying the gateway with the same
// reference. The write is a conditional claim on the absent payment_ref
// field, so concurrent initiations for the same booking cannot both open a
// checkout: the loser gets ErrAlreadyProcessed without a gateway call.
func (s *DefaultReconcilerService) Initiate(ctx context.Context, bookingID string, declaredAmount *float64) (*models.InitiateResult, error) {
	logger := utils.GetLogger()

	if s.Gateway == nil {
		return nil, ErrGatewayUnconfigured
	}

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if b == nil {
		return nil, ErrUnknownReference
	}
	if b.PaymentStatus != models.PaymentPending || b.Status != models.BookingPending {
		return nil, ErrAlreadyProcessed
	}
	if b.PaymentRef != "" {
		// One active attempt per booking; resolve it via Verify instead.
		return nil, ErrAlreadyProcessed
	}

	// The stored total is canonical. A declared amount is only checked, never
	// trusted, and a mismatch fails before anything leaves the building.
	if declaredAmount != nil && !utils.AmountsEqual(*declaredAmount, b.TotalPrice) {
		logger.Warn("payment initiation amount mismatch",
			zap.String("bookingID", b.ID),
			zap.Float64("declared", *declaredAmount),
			zap.Float64("computed", b.TotalPrice))
		return nil, ErrAmountMismatch
	}

	reference := fmt.Sprintf("%s-%s-%s", referencePrefix, b.ID, uuid.New().String()[:8])
	if err := s.Bookings.ClaimPaymentRef(b.ID, reference); err != nil {
		if errors.Is(err, bookingRepo.ErrPaymentRefClaimed) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to record payment reference for booking %s: %w", b.ID, err)
	}
	b.PaymentRef = reference

	callCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	redirectURL, err := s.Gateway.InitializeTransaction(callCtx, b.TotalPrice, s.Currency, reference, s.CallbackURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("gateway initiation timed out; attempt left pending",
				zap.String("bookingID", b.ID), zap.String("paymentRef", reference))
			return nil, ErrGatewayTimeout
		}
		logger.Error("gateway initiation failed",
			zap.String("bookingID", b.ID), zap.String("paymentRef", reference), zap.Error(err))
		return nil, fmt.Errorf("payment could not be started: %w", err)
	}

	logger.Info("payment initiated",
		zap.String("bookingID", b.ID),
		zap.String("paymentRef", reference),
		zap.Float64("amount", b.TotalPrice))
	return &models.InitiateResult{RedirectURL: redirectURL, Reference: reference}, nil
}

// Verify resolves a reference against the gateway and applies the outcome.
// It is idempotent per booking: replaying a terminal outcome, whether from a
// duplicate webhook or a poll racing a webhook, produces no further side
// effects.
func (s *DefaultReconcilerService) Verify(ctx context.Context, reference string) (*models.VerifyResult, error) {
	logger := utils.GetLogger()

	b, err := s.Bookings.GetByPaymentRef(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payment reference %s: %w", reference, err)
	}
	if b == nil {
		return nil, ErrUnknownReference
	}

	result := &models.VerifyResult{Reference: reference, BookingID: b.ID}

	// Terminal local state wins: the transition already ran.
	switch b.PaymentStatus {
	case models.PaymentCompleted, models.PaymentRefunded, models.PaymentRefundPending:
		result.Outcome = models.OutcomeSuccess
		return result, nil
	case models.PaymentFailed:
		result.Outcome = models.OutcomeFailed
		return result, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	outcome, rawStatus, err := s.Gateway.VerifyTransaction(callCtx, reference)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Outcome = models.OutcomePending
			return result, ErrGatewayTimeout
		}
		return nil, fmt.Errorf("gateway verification failed for %s: %w", reference, err)
	}

	result.Outcome = outcome
	switch outcome {
	case models.OutcomeSuccess:
		if _, err := s.Lifecycle.Confirm(b.ID); err != nil {
			logger.Error("verified payment could not be applied",
				zap.String("bookingID", b.ID),
				zap.String("paymentRef", reference),
				zap.String("gatewayStatus", rawStatus),
				zap.Error(err))
			return nil, err
		}
		logger.Info("payment verified",
			zap.String("bookingID", b.ID), zap.String("paymentRef", reference))
	case models.OutcomeFailed:
		if _, err := s.Lifecycle.MarkPaymentFailed(b.ID); err != nil {
			logger.Error("payment failure could not be applied",
				zap.String("bookingID", b.ID),
				zap.String("paymentRef", reference),
				zap.String("gatewayStatus", rawStatus),
				zap.Error(err))
			return nil, err
		}
		logger.Info("payment failed at gateway",
			zap.String("bookingID", b.ID),
			zap.String("paymentRef", reference),
			zap.String("gatewayStatus", rawStatus))
	default:
		// Still pending gateway-side; nothing to apply yet.
	}
	return result, nil
}

// Refund asks the gateway to return amount on the booking's reference. The
// caller owns the policy of what a failure means; this method only guarantees
// the failure is logged with enough context for manual reconciliation.
func (s *DefaultReconcilerService) Refund(booking *models.Booking, amount float64) error {
	if s.Gateway == nil {
		return ErrGatewayUnconfigured
	}
	if booking.PaymentRef == "" {
		return fmt.Errorf("booking %s has no payment reference to refund against", booking.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
	defer cancel()

	if err := s.Gateway.Refund(ctx, booking.PaymentRef, amount); err != nil {
		utils.GetLogger().Error("refund request failed",
			zap.String("bookingID", booking.ID),
			zap.String("paymentRef", booking.PaymentRef),
			zap.Float64("amount", amount),
			zap.Error(err))
		return err
	}

	utils.GetLogger().Info("refund issued",
		zap.String("bookingID", booking.ID),
		zap.String("paymentRef", booking.PaymentRef),
		zap.Float64("amount", amount))
	return nil
}

// Probe reports the gateway outcome for a reference without applying it.
func (s *DefaultReconcilerService) Probe(reference string) (models.PaymentOutcome, error) {
	if s.Gateway == nil {
		return models.OutcomePending, ErrGatewayUnconfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
	defer cancel()

	outcome, _, err := s.Gateway.VerifyTransaction(ctx, reference)
	return outcome, err
}

// BookingIDFromReference extracts the embedded booking id, e.g.
// "MSRT-<bookingID>-a1b2c3d4" → "<bookingID>". Returns "" when the reference
// was not issued by this system.
func BookingIDFromReference(reference string) string {
	if !strings.HasPrefix(reference, referencePrefix+"-") {
		return ""
	}
	trimmed := strings.TrimPrefix(reference, referencePrefix+"-")
	idx := strings.LastIndex(trimmed, "-")
	if idx <= 0 {
		return ""
	}
	return trimmed[:idx]
}
