package booking_test

import (
	"errors"
	"sync"
	"time"

	bookingRepo "meserte/database/repository/booking"
	"meserte/models"
	"meserte/services/booking"
)

// roomStore is an in-memory RoomRepository with the same conditional-flip
// semantics as the Mongo implementation.
type roomStore struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
}

func newRoomStore(rooms ...*models.Room) *roomStore {
	s := &roomStore{rooms: make(map[string]*models.Room)}
	for _, r := range rooms {
		c := *r
		s.rooms[r.ID] = &c
	}
	return s
}

func (s *roomStore) get(id string) *models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (s *roomStore) GetByID(id string) (*models.Room, error) { return s.get(id), nil }

func (s *roomStore) GetByNumber(number string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Number == number {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (s *roomStore) GetAll() ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (s *roomStore) Create(room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *room
	s.rooms[room.ID] = &c
	return nil
}

func (s *roomStore) Update(room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *room
	s.rooms[room.ID] = &c
	return nil
}

func (s *roomStore) Reserve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok || r.Occupancy != models.OccupancyVacant || r.Cleanliness == models.CleanlinessMaintenance {
		return errors.New("room is not available for reservation")
	}
	r.Occupancy = models.OccupancyOccupied
	return nil
}

func (s *roomStore) Release(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		r.Occupancy = models.OccupancyVacant
	}
	return nil
}

func (s *roomStore) MarkDirty(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		r.Cleanliness = models.CleanlinessDirty
	}
	return nil
}

func (s *roomStore) MarkClean(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		r.Cleanliness = models.CleanlinessClean
	}
	return nil
}

func (s *roomStore) SetMaintenance(id string, underMaintenance bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		if underMaintenance {
			r.Cleanliness = models.CleanlinessMaintenance
		} else {
			r.Cleanliness = models.CleanlinessClean
		}
	}
	return nil
}

// bookingStore is an in-memory BookingRepository.
type bookingStore struct {
	mu   sync.Mutex
	byID map[string]*models.Booking
}

func newBookingStore(bookings ...*models.Booking) *bookingStore {
	s := &bookingStore{byID: make(map[string]*models.Booking)}
	for _, b := range bookings {
		c := *b
		s.byID[b.ID] = &c
	}
	return s
}

func (s *bookingStore) GetByID(id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (s *bookingStore) GetByPaymentRef(ref string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byID {
		if b.PaymentRef == ref {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (s *bookingStore) GetByGuest(guestID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.byID {
		if b.GuestID == guestID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *bookingStore) Create(b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	c := *b
	s.byID[b.ID] = &c
	return nil
}

func (s *bookingStore) Update(b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[b.ID]; !ok {
		return errors.New("booking not found")
	}
	b.UpdatedAt = time.Now()
	c := *b
	s.byID[b.ID] = &c
	return nil
}

func (s *bookingStore) ClaimPaymentRef(id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return errors.New("booking not found")
	}
	if b.PaymentRef != "" {
		return bookingRepo.ErrPaymentRefClaimed
	}
	b.PaymentRef = ref
	return nil
}

func (s *bookingStore) FindOverlapping(roomID string, checkIn, checkOut time.Time, excludeID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.byID {
		if b.RoomID != roomID || b.ID == excludeID || !b.Active() {
			continue
		}
		if booking.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *bookingStore) FindOverdue(now time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.byID {
		if b.Status == models.BookingConfirmed && !b.CheckOut.After(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *bookingStore) FindStalePending(cutoff time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.byID {
		if b.Status == models.BookingPending && b.PaymentStatus == models.PaymentPending && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// stubRefunder records refund calls and can be told to fail.
type stubRefunder struct {
	mu       sync.Mutex
	calls    []float64
	failWith error
}

func (r *stubRefunder) Refund(b *models.Booking, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, amount)
	return r.failWith
}

// stubInvoices answers the settled check.
type stubInvoices struct {
	settled map[string]bool
}

func (s *stubInvoices) IsSettled(bookingID string) (bool, error) {
	return s.settled[bookingID], nil
}

// stubProber returns a fixed gateway outcome.
type stubProber struct {
	outcome models.PaymentOutcome
	err     error
}

func (p *stubProber) Probe(reference string) (models.PaymentOutcome, error) {
	return p.outcome, p.err
}
