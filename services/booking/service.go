package booking

import (
	"fmt"
	"time"

	"meserte/models"
	"meserte/services/events"
	"meserte/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create validates the request, runs the overlap gate and reserves the room,
// all under the room's lock so two concurrent requests for the same room and
// dates cannot both succeed.
func (s *DefaultLifecycleService) Create(req CreateRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	in, out, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	today := truncateToDay(time.Now())
	if in.Before(today) {
		return nil, ErrInvalidDateRange
	}
	if req.GuestCount <= 0 {
		return nil, ErrInvalidDateRange
	}

	room, err := s.Rooms.GetByID(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", req.RoomID, err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if !room.Bookable() {
		return nil, ErrRoomUnavailable
	}

	lock := s.locks.get(room.ID)
	lock.Lock()
	defer lock.Unlock()

	conflict, err := s.HasConflict(room.ID, req.CheckIn, req.CheckOut, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrOverlapConflict
	}

	// Conditional flip on the room document backs up the in-process lock.
	if err := s.Rooms.Reserve(room.ID); err != nil {
		logger.Warn("room reservation flip refused",
			zap.String("roomID", room.ID), zap.Error(err))
		return nil, ErrRoomUnavailable
	}

	nights := int(out.Sub(in).Hours() / 24)
	booking := &models.Booking{
		ID:            uuid.New().String(),
		GuestID:       req.RequesterID,
		RoomID:        room.ID,
		RoomNumber:    room.Number,
		CheckIn:       in,
		CheckOut:      out,
		GuestCount:    req.GuestCount,
		TotalPrice:    utils.RoundMoney(float64(nights) * room.NightlyRate),
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
	}

	if err := s.Bookings.Create(booking); err != nil {
		// Give the room back rather than stranding it occupied.
		if relErr := s.Rooms.Release(room.ID); relErr != nil {
			logger.Error("failed to release room after booking insert failure",
				zap.String("roomID", room.ID), zap.Error(relErr))
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	logger.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("room", booking.RoomNumber),
		zap.Float64("total", booking.TotalPrice))
	s.publish(events.TypeBookingCreated, booking, nil)
	return booking, nil
}

// GetByID retrieves a booking.
func (s *DefaultLifecycleService) GetByID(id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// ListForGuest returns all bookings a guest has made.
func (s *DefaultLifecycleService) ListForGuest(guestID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.GetByGuest(guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for guest %s: %w", guestID, err)
	}
	return bookings, nil
}

// Confirm applies a verified payment. It is idempotent: confirming an
// already-confirmed booking is a no-op, which makes duplicate webhook
// delivery harmless. Confirming a cancelled or completed booking is an
// invariant violation and fails loudly.
func (s *DefaultLifecycleService) Confirm(bookingID string) (*models.Booking, error) {
	b, err := s.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case models.BookingConfirmed:
		return b, nil
	case models.BookingPending:
		// fall through to the transition
	default:
		return nil, fmt.Errorf("cannot confirm booking %s in status %s: %w",
			b.ID, b.Status, ErrInvalidTransition)
	}

	b.Status = models.BookingConfirmed
	b.PaymentStatus = models.PaymentCompleted
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to confirm booking %s: %w", b.ID, err)
	}

	utils.GetLogger().Info("booking confirmed", zap.String("bookingID", b.ID))
	s.publish(events.TypeBookingConfirmed, b, nil)
	return b, nil
}

// MarkPaymentFailed records a terminal gateway failure and releases the held
// room immediately; a failed payment must not hold inventory. Replays on an
// already-failed booking are no-ops.
func (s *DefaultLifecycleService) MarkPaymentFailed(bookingID string) (*models.Booking, error) {
	b, err := s.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == models.PaymentFailed {
		return b, nil
	}
	if b.Status != models.BookingPending {
		return nil, fmt.Errorf("cannot fail payment for booking %s in status %s: %w",
			b.ID, b.Status, ErrInvalidTransition)
	}

	b.PaymentStatus = models.PaymentFailed
	b.Status = models.BookingCancelled
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to record payment failure for booking %s: %w", b.ID, err)
	}
	if err := s.Rooms.Release(b.RoomID); err != nil {
		utils.GetLogger().Error("failed to release room after payment failure",
			zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(err))
	}

	s.publish(events.TypePaymentFailed, b, nil)
	return b, nil
}

// Cancel tears down a pending or confirmed booking. If payment had completed,
// a refund minus the service fee is requested first; a refund failure is
// downgraded to a warning and the payment left refund-pending for manual
// reconciliation. The room is always released as the final step, regardless
// of the refund outcome.
func (s *DefaultLifecycleService) Cancel(bookingID, requesterID string) (*CancelResult, error) {
	logger := utils.GetLogger()

	b, err := s.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !b.Active() {
		return nil, fmt.Errorf("cannot cancel booking %s in status %s: %w",
			b.ID, b.Status, ErrInvalidTransition)
	}

	result := &CancelResult{}
	if b.PaymentStatus == models.PaymentCompleted {
		result.RefundAmount = utils.RoundMoney(b.TotalPrice * (1 - s.RefundFeePercent/100))
		if s.Refunder == nil {
			result.RefundWarning = "refund service unavailable; queued for manual reconciliation"
			b.PaymentStatus = models.PaymentRefundPending
		} else if refundErr := s.Refunder.Refund(b, result.RefundAmount); refundErr != nil {
			logger.Warn("refund failed during cancellation, continuing",
				zap.String("bookingID", b.ID),
				zap.String("paymentRef", b.PaymentRef),
				zap.Float64("amount", result.RefundAmount),
				zap.Error(refundErr))
			result.RefundWarning = "refund could not be issued and will be reconciled manually"
			b.PaymentStatus = models.PaymentRefundPending
		} else {
			b.PaymentStatus = models.PaymentRefunded
		}
	}

	b.Status = models.BookingCancelled
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to cancel booking %s: %w", b.ID, err)
	}

	// Inventory correctness outranks payment bookkeeping: release no matter
	// what happened above.
	if err := s.Rooms.Release(b.RoomID); err != nil {
		logger.Error("failed to release room on cancellation",
			zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(err))
	}

	logger.Info("booking cancelled",
		zap.String("bookingID", b.ID),
		zap.String("requesterID", requesterID),
		zap.Float64("refund", result.RefundAmount))
	s.publish(events.TypeBookingCancelled, b, map[string]string{"requester": requesterID})

	result.Booking = b
	return result, nil
}

// CompleteStay checks the guest out. Only confirmed bookings with a settled
// invoice qualify; the room is released and flagged for housekeeping.
func (s *DefaultLifecycleService) CompleteStay(bookingID string) (*models.Booking, error) {
	b, err := s.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("cannot complete booking %s in status %s: %w",
			b.ID, b.Status, ErrInvalidTransition)
	}
	if s.Invoices != nil {
		settled, err := s.Invoices.IsSettled(b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check invoice for booking %s: %w", b.ID, err)
		}
		if !settled {
			return nil, ErrInvoiceUnsettled
		}
	}

	b.Status = models.BookingCompleted
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to complete booking %s: %w", b.ID, err)
	}
	s.releaseDirty(b)

	utils.GetLogger().Info("stay completed", zap.String("bookingID", b.ID), zap.String("room", b.RoomNumber))
	s.publish(events.TypeBookingCompleted, b, nil)
	return b, nil
}

// ReconcileExpired is the periodic safety net. Confirmed bookings past their
// check-out with the room still occupied are force-completed; pending
// bookings past the hold window are resolved against the gateway or expired.
func (s *DefaultLifecycleService) ReconcileExpired() (completed, expired int, err error) {
	logger := utils.GetLogger()
	now := time.Now()

	overdue, err := s.Bookings.FindOverdue(now)
	if err != nil {
		return 0, 0, fmt.Errorf("reconcile: failed to list overdue bookings: %w", err)
	}
	for i := range overdue {
		b := &overdue[i]
		room, roomErr := s.Rooms.GetByID(b.RoomID)
		if roomErr != nil || room == nil {
			logger.Error("reconcile: room lookup failed",
				zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(roomErr))
			continue
		}
		if room.Occupancy != models.OccupancyOccupied {
			continue
		}
		b.Status = models.BookingCompleted
		if updErr := s.Bookings.Update(b); updErr != nil {
			logger.Error("reconcile: failed to force-complete booking",
				zap.String("bookingID", b.ID), zap.Error(updErr))
			continue
		}
		s.releaseDirty(b)
		logger.Warn("reconcile: force-completed overdue booking",
			zap.String("bookingID", b.ID), zap.String("room", b.RoomNumber))
		s.publish(events.TypeBookingCompleted, b, map[string]string{"forced": "true"})
		completed++
	}

	window := time.Duration(s.PendingHoldWindowMin) * time.Minute
	if window <= 0 {
		window = 30 * time.Minute
	}
	stale, err := s.Bookings.FindStalePending(now.Add(-window))
	if err != nil {
		return completed, 0, fmt.Errorf("reconcile: failed to list stale pending bookings: %w", err)
	}
	for i := range stale {
		b := &stale[i]

		// Ask the gateway one last time before dropping the hold; the charge
		// may have succeeded without the webhook ever arriving.
		if s.Prober != nil && b.PaymentRef != "" {
			outcome, probeErr := s.Prober.Probe(b.PaymentRef)
			if probeErr != nil {
				logger.Warn("reconcile: gateway probe failed",
					zap.String("bookingID", b.ID), zap.String("paymentRef", b.PaymentRef), zap.Error(probeErr))
			} else if outcome == models.OutcomeSuccess {
				if _, confErr := s.Confirm(b.ID); confErr != nil {
					logger.Error("reconcile: late confirmation failed",
						zap.String("bookingID", b.ID), zap.Error(confErr))
				}
				continue
			}
		}

		b.Status = models.BookingCancelled
		if updErr := s.Bookings.Update(b); updErr != nil {
			logger.Error("reconcile: failed to expire stale booking",
				zap.String("bookingID", b.ID), zap.Error(updErr))
			continue
		}
		if relErr := s.Rooms.Release(b.RoomID); relErr != nil {
			logger.Error("reconcile: failed to release room for expired hold",
				zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(relErr))
		}
		logger.Info("reconcile: expired stale pending booking",
			zap.String("bookingID", b.ID), zap.String("room", b.RoomNumber))
		s.publish(events.TypeBookingCancelled, b, map[string]string{"expired": "true"})
		expired++
	}

	return completed, expired, nil
}

// releaseDirty releases the room and flags it for housekeeping.
func (s *DefaultLifecycleService) releaseDirty(b *models.Booking) {
	logger := utils.GetLogger()
	if err := s.Rooms.Release(b.RoomID); err != nil {
		logger.Error("failed to release room at checkout",
			zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(err))
	}
	if err := s.Rooms.MarkDirty(b.RoomID); err != nil {
		logger.Error("failed to mark room dirty at checkout",
			zap.String("bookingID", b.ID), zap.String("roomID", b.RoomID), zap.Error(err))
	}
}

func (s *DefaultLifecycleService) publish(eventType string, b *models.Booking, payload map[string]string) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(events.Event{
		Type:       eventType,
		BookingID:  b.ID,
		RoomNumber: b.RoomNumber,
		Payload:    payload,
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
