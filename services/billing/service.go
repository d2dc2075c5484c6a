package billing

import (
	"fmt"
	"time"

	bookingRepo "meserte/database/repository/booking"
	invoiceRepo "meserte/database/repository/invoice"
	orderRepo "meserte/database/repository/order"
	roomRepo "meserte/database/repository/room"
	"meserte/models"
	"meserte/services/events"
	"meserte/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AggregatorService builds and closes the running bill for a stay.
type AggregatorService interface {
	// GetOrCreate lazily materializes the invoice for a confirmed booking,
	// seeded with the full-stay room charge.
	GetOrCreate(bookingID string) (*models.Invoice, error)
	// CurrentBill is the read view: the stored invoice plus the room's
	// payment-pending food orders folded in as transient line items.
	CurrentBill(bookingID string) (*models.Invoice, error)
	// AddCharge appends a miscellaneous line item and recomputes totals.
	AddCharge(invoiceID, description string, quantity int, unitPrice float64) (*models.Invoice, error)
	// Settle closes an open invoice exactly once and settles the room's
	// pending food orders.
	Settle(invoiceID, method string) (*models.Invoice, error)
	// GetByID fetches an invoice.
	GetByID(invoiceID string) (*models.Invoice, error)
	// IsSettled reports whether the booking's invoice exists and is paid.
	IsSettled(bookingID string) (bool, error)
}

// DefaultAggregatorService implements AggregatorService.
type DefaultAggregatorService struct {
	Invoices invoiceRepo.InvoiceRepository
	Bookings bookingRepo.BookingRepository
	Rooms    roomRepo.RoomRepository
	Orders   orderRepo.OrderRepository
	Events   events.Publisher

	// TaxRatePercent is the flat tax applied to the subtotal.
	TaxRatePercent float64
}

// GetOrCreate returns the booking's invoice, creating it on first access.
func (s *DefaultAggregatorService) GetOrCreate(bookingID string) (*models.Invoice, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	inv, err := s.Invoices.GetByBookingID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice for booking %s: %w", bookingID, err)
	}
	if inv != nil {
		return inv, nil
	}

	nights := b.Nights()
	rate := nightlyRate(s.Rooms, b, nights)

	inv = &models.Invoice{
		ID:         uuid.New().String(),
		BookingID:  b.ID,
		RoomNumber: b.RoomNumber,
		Status:     models.InvoiceOpen,
		Items: []models.LineItem{
			{
				Description: fmt.Sprintf("Room %s, %d night(s)", b.RoomNumber, nights),
				Quantity:    nights,
				UnitPrice:   rate,
			},
		},
	}
	s.recompute(inv)

	if err := s.Invoices.Create(inv); err != nil {
		// A concurrent first access may have won the unique booking_id index;
		// the stored invoice is the one that counts.
		existing, getErr := s.Invoices.GetByBookingID(bookingID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create invoice for booking %s: %w", bookingID, err)
	}

	utils.GetLogger().Info("invoice created",
		zap.String("invoiceID", inv.ID),
		zap.String("bookingID", b.ID),
		zap.Float64("total", inv.Total))
	return inv, nil
}

// CurrentBill folds the room's pending food orders into a copy of the stored
// invoice. The transient items are never persisted here; they are written back
// only at settlement.
func (s *DefaultAggregatorService) CurrentBill(bookingID string) (*models.Invoice, error) {
	inv, err := s.GetOrCreate(bookingID)
	if err != nil {
		return nil, err
	}

	view := *inv
	view.Items = append([]models.LineItem(nil), inv.Items...)
	view.Items = append(view.Items, s.pendingOrderItems(inv.RoomNumber)...)
	s.recompute(&view)
	return &view, nil
}

// AddCharge appends a miscellaneous line item. Totals are always derived,
// never hand-set.
func (s *DefaultAggregatorService) AddCharge(invoiceID, description string, quantity int, unitPrice float64) (*models.Invoice, error) {
	if description == "" || quantity <= 0 || unitPrice < 0 {
		return nil, ErrInvalidCharge
	}

	inv, err := s.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceOpen {
		return nil, ErrInvoiceClosed
	}

	inv.Items = append(inv.Items, models.LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	s.recompute(inv)

	if err := s.Invoices.Update(inv); err != nil {
		return nil, fmt.Errorf("failed to add charge to invoice %s: %w", invoiceID, err)
	}
	return inv, nil
}

// Settle closes the invoice. The room's pending food orders are folded in as
// persisted line items first, so the final bill is complete, then flipped to
// payment-completed. Settling twice is an error.
func (s *DefaultAggregatorService) Settle(invoiceID, method string) (*models.Invoice, error) {
	logger := utils.GetLogger()

	inv, err := s.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case models.InvoicePaid:
		return nil, ErrAlreadySettled
	case models.InvoiceVoid:
		return nil, ErrInvoiceClosed
	}

	inv.Items = append(inv.Items, s.pendingOrderItems(inv.RoomNumber)...)
	s.recompute(inv)

	now := time.Now()
	inv.Status = models.InvoicePaid
	inv.Method = method
	inv.PaidAt = &now

	if err := s.Invoices.Update(inv); err != nil {
		return nil, fmt.Errorf("failed to settle invoice %s: %w", invoiceID, err)
	}

	if s.Orders != nil {
		if err := s.Orders.MarkChargesSettled(inv.RoomNumber); err != nil {
			logger.Error("failed to settle food orders after invoice settlement",
				zap.String("invoiceID", inv.ID),
				zap.String("room", inv.RoomNumber),
				zap.Error(err))
		}
	}

	logger.Info("invoice settled",
		zap.String("invoiceID", inv.ID),
		zap.String("bookingID", inv.BookingID),
		zap.String("method", method),
		zap.Float64("total", inv.Total))
	if s.Events != nil {
		s.Events.Publish(events.Event{
			Type:       events.TypeInvoiceSettled,
			BookingID:  inv.BookingID,
			RoomNumber: inv.RoomNumber,
			Payload:    map[string]string{"method": method},
		})
	}
	return inv, nil
}

// GetByID fetches an invoice by id.
func (s *DefaultAggregatorService) GetByID(invoiceID string) (*models.Invoice, error) {
	inv, err := s.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %s: %w", invoiceID, err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// IsSettled reports whether the booking's invoice exists and is paid. A stay
// with no invoice yet has, by definition, not settled.
func (s *DefaultAggregatorService) IsSettled(bookingID string) (bool, error) {
	inv, err := s.Invoices.GetByBookingID(bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to load invoice for booking %s: %w", bookingID, err)
	}
	if inv == nil {
		return false, nil
	}
	return inv.Status == models.InvoicePaid, nil
}

// pendingOrderItems maps the room's payment-pending food orders to line items.
func (s *DefaultAggregatorService) pendingOrderItems(roomNumber string) []models.LineItem {
	if s.Orders == nil {
		return nil
	}
	orders, err := s.Orders.FindPendingChargesForRoom(roomNumber)
	if err != nil {
		utils.GetLogger().Error("failed to fetch pending food orders",
			zap.String("room", roomNumber), zap.Error(err))
		return nil
	}

	items := make([]models.LineItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, models.LineItem{
			Description: "Food order: " + o.Description,
			Quantity:    o.Quantity,
			UnitPrice:   o.UnitPrice,
		})
	}
	return items
}

// recompute derives every line total, the subtotal, tax and total. It runs on
// every mutation so stored amounts can never drift from the line items.
func (s *DefaultAggregatorService) recompute(inv *models.Invoice) {
	subtotal := 0.0
	for i := range inv.Items {
		inv.Items[i].Total = utils.RoundMoney(float64(inv.Items[i].Quantity) * inv.Items[i].UnitPrice)
		subtotal += inv.Items[i].Total
	}
	inv.Subtotal = utils.RoundMoney(subtotal)
	inv.Tax = utils.RoundMoney(inv.Subtotal * s.TaxRatePercent / 100)
	inv.Total = utils.RoundMoney(inv.Subtotal + inv.Tax)
}

// nightlyRate pulls the room's current rate, falling back to the booking's
// stored total when the room record is unavailable.
func nightlyRate(rooms roomRepo.RoomRepository, b *models.Booking, nights int) float64 {
	if rooms != nil {
		if room, err := rooms.GetByID(b.RoomID); err == nil && room != nil {
			return room.NightlyRate
		}
	}
	if nights > 0 {
		return utils.RoundMoney(b.TotalPrice / float64(nights))
	}
	return b.TotalPrice
}
