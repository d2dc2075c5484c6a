package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "meserte/database/repository/booking"
	"meserte/models"
	"meserte/services/payment"

	"github.com/stretchr/testify/require"
)

// fakeGateway lets each test script the gateway's behavior per call.
type fakeGateway struct {
	mu            sync.Mutex
	initCalls     int
	verifyCalls   int
	refundCalls   int
	initializeFn  func(ctx context.Context, amount float64, currency, reference, callbackURL string) (string, error)
	verifyFn      func(ctx context.Context, reference string) (models.PaymentOutcome, string, error)
	refundFn      func(ctx context.Context, reference string, amount float64) error
	lastReference string
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, amount float64, currency, reference, callbackURL string) (string, error) {
	g.mu.Lock()
	g.initCalls++
	g.lastReference = reference
	g.mu.Unlock()
	if g.initializeFn != nil {
		return g.initializeFn(ctx, amount, currency, reference, callbackURL)
	}
	return "https://checkout.example/" + reference, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (models.PaymentOutcome, string, error) {
	g.mu.Lock()
	g.verifyCalls++
	g.mu.Unlock()
	if g.verifyFn != nil {
		return g.verifyFn(ctx, reference)
	}
	return models.OutcomePending, "requires_payment_method", nil
}

func (g *fakeGateway) Refund(ctx context.Context, reference string, amount float64) error {
	g.mu.Lock()
	g.refundCalls++
	g.mu.Unlock()
	if g.refundFn != nil {
		return g.refundFn(ctx, reference, amount)
	}
	return nil
}

// bookingStore is a minimal in-memory BookingRepository.
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

func (s *bookingStore) FindOverlapping(string, time.Time, time.Time, string) ([]models.Booking, error) {
	return nil, nil
}

func (s *bookingStore) FindOverdue(time.Time) ([]models.Booking, error) { return nil, nil }

func (s *bookingStore) FindStalePending(time.Time) ([]models.Booking, error) { return nil, nil }

// fakeLifecycle applies transitions to the store the way the real booking
// service would, so replay tests can observe the terminal short-circuit.
type fakeLifecycle struct {
	store    *bookingStore
	confirms int
	failures int
}

func (l *fakeLifecycle) Confirm(bookingID string) (*models.Booking, error) {
	l.confirms++
	b, _ := l.store.GetByID(bookingID)
	b.Status = models.BookingConfirmed
	b.PaymentStatus = models.PaymentCompleted
	if err := l.store.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *fakeLifecycle) MarkPaymentFailed(bookingID string) (*models.Booking, error) {
	l.failures++
	b, _ := l.store.GetByID(bookingID)
	b.Status = models.BookingCancelled
	b.PaymentStatus = models.PaymentFailed
	if err := l.store.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID:            "bk-1",
		GuestID:       "guest-1",
		RoomID:        "room-101",
		RoomNumber:    "101",
		TotalPrice:    2000,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
	}
}

func newReconciler(gw payment.PaymentGateway, store bookingRepo.BookingRepository, lc payment.Lifecycle) *payment.DefaultReconcilerService {
	return &payment.DefaultReconcilerService{
		Gateway:     gw,
		Bookings:    store,
		Lifecycle:   lc,
		Currency:    "etb",
		CallbackURL: "https://meserte.example/payments/callback",
		Timeout:     5 * time.Second,
	}
}

func amount(v float64) *float64 { return &v }

func TestInitiatePersistsReferenceBeforeOutboundCall(t *testing.T) {
	store := newBookingStore(pendingBooking())
	gw := &fakeGateway{}
	var refAtCallTime string
	gw.initializeFn = func(_ context.Context, _ float64, _, reference, _ string) (string, error) {
		b, _ := store.GetByID("bk-1")
		refAtCallTime = b.PaymentRef
		return "https://checkout.example/" + reference, nil
	}
	svc := newReconciler(gw, store, &fakeLifecycle{store: store})

	res, err := svc.Initiate(context.Background(), "bk-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Reference)
	require.Contains(t, res.RedirectURL, res.Reference)

	// The reference was already on the booking when the gateway was called.
	require.Equal(t, res.Reference, refAtCallTime)
	require.Equal(t, "bk-1", payment.BookingIDFromReference(res.Reference))
}

func TestInitiateRefusals(t *testing.T) {
	t.Run("no gateway configured", func(t *testing.T) {
		svc := newReconciler(nil, newBookingStore(pendingBooking()), nil)
		_, err := svc.Initiate(context.Background(), "bk-1", nil)
		require.ErrorIs(t, err, payment.ErrGatewayUnconfigured)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := newReconciler(&fakeGateway{}, newBookingStore(), nil)
		_, err := svc.Initiate(context.Background(), "no-such", nil)
		require.ErrorIs(t, err, payment.ErrUnknownReference)
	})

	t.Run("already confirmed", func(t *testing.T) {
		b := pendingBooking()
		b.Status = models.BookingConfirmed
		b.PaymentStatus = models.PaymentCompleted
		svc := newReconciler(&fakeGateway{}, newBookingStore(b), nil)
		_, err := svc.Initiate(context.Background(), "bk-1", nil)
		require.ErrorIs(t, err, payment.ErrAlreadyProcessed)
	})

	t.Run("attempt already active", func(t *testing.T) {
		b := pendingBooking()
		b.PaymentRef = "MSRT-bk-1-deadbeef"
		svc := newReconciler(&fakeGateway{}, newBookingStore(b), nil)
		_, err := svc.Initiate(context.Background(), "bk-1", nil)
		require.ErrorIs(t, err, payment.ErrAlreadyProcessed)
	})
}

// gatedStore holds every GetByID reader at a barrier so two initiations both
// observe the booking without a reference before either records one.
type gatedStore struct {
	*bookingStore
	readers sync.WaitGroup
}

func (s *gatedStore) GetByID(id string) (*models.Booking, error) {
	b, err := s.bookingStore.GetByID(id)
	s.readers.Done()
	s.readers.Wait()
	return b, err
}

// Two concurrent initiations for the same booking: exactly one checkout opens,
// and the stored reference is the one the winning session carries.
func TestInitiateConcurrentSameBooking(t *testing.T) {
	store := &gatedStore{bookingStore: newBookingStore(pendingBooking())}
	store.readers.Add(2)
	gw := &fakeGateway{}
	svc := newReconciler(gw, store, nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Initiate(context.Background(), "bk-1", nil)
		}(i)
	}
	wg.Wait()

	var successes, refused int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, payment.ErrAlreadyProcessed):
			refused++
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, refused)
	require.Equal(t, 1, gw.initCalls)

	b, _ := store.bookingStore.GetByID("bk-1")
	require.Equal(t, gw.lastReference, b.PaymentRef)
}

func TestInitiateAmountIntegrity(t *testing.T) {
	store := newBookingStore(pendingBooking())
	gw := &fakeGateway{}
	svc := newReconciler(gw, store, nil)

	_, err := svc.Initiate(context.Background(), "bk-1", amount(1999))
	require.ErrorIs(t, err, payment.ErrAmountMismatch)
	require.Zero(t, gw.initCalls) // rejected before anything went out

	// Within rounding tolerance is accepted.
	_, err = svc.Initiate(context.Background(), "bk-1", amount(2000.001))
	require.NoError(t, err)
	require.Equal(t, 1, gw.initCalls)
}

func TestInitiateTimeoutLeavesPaymentPending(t *testing.T) {
	store := newBookingStore(pendingBooking())
	gw := &fakeGateway{
		initializeFn: func(context.Context, float64, string, string, string) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	svc := newReconciler(gw, store, nil)

	_, err := svc.Initiate(context.Background(), "bk-1", nil)
	require.ErrorIs(t, err, payment.ErrGatewayTimeout)

	// The attempt stays open: pending payment, reference recorded for later
	// resolution against the gateway.
	b, _ := store.GetByID("bk-1")
	require.Equal(t, models.PaymentPending, b.PaymentStatus)
	require.NotEmpty(t, b.PaymentRef)
}

func TestVerifySuccessConfirmsOnce(t *testing.T) {
	b := pendingBooking()
	b.PaymentRef = "MSRT-bk-1-deadbeef"
	store := newBookingStore(b)
	lc := &fakeLifecycle{store: store}
	gw := &fakeGateway{
		verifyFn: func(context.Context, string) (models.PaymentOutcome, string, error) {
			return models.OutcomeSuccess, "succeeded", nil
		},
	}
	svc := newReconciler(gw, store, lc)

	res, err := svc.Verify(context.Background(), b.PaymentRef)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeSuccess, res.Outcome)
	require.Equal(t, "bk-1", res.BookingID)
	require.Equal(t, 1, lc.confirms)

	// Duplicate webhook. The local terminal state answers without another
	// gateway call or transition.
	res, err = svc.Verify(context.Background(), b.PaymentRef)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeSuccess, res.Outcome)
	require.Equal(t, 1, lc.confirms)
	require.Equal(t, 1, gw.verifyCalls)
}

func TestVerifyFailureMarksPaymentFailed(t *testing.T) {
	b := pendingBooking()
	b.PaymentRef = "MSRT-bk-1-deadbeef"
	store := newBookingStore(b)
	lc := &fakeLifecycle{store: store}
	gw := &fakeGateway{
		verifyFn: func(context.Context, string) (models.PaymentOutcome, string, error) {
			return models.OutcomeFailed, "canceled", nil
		},
	}
	svc := newReconciler(gw, store, lc)

	res, err := svc.Verify(context.Background(), b.PaymentRef)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeFailed, res.Outcome)
	require.Equal(t, 1, lc.failures)

	// Replay short-circuits on the failed local state.
	_, err = svc.Verify(context.Background(), b.PaymentRef)
	require.NoError(t, err)
	require.Equal(t, 1, lc.failures)
}

func TestVerifyPendingAppliesNothing(t *testing.T) {
	b := pendingBooking()
	b.PaymentRef = "MSRT-bk-1-deadbeef"
	store := newBookingStore(b)
	lc := &fakeLifecycle{store: store}
	svc := newReconciler(&fakeGateway{}, store, lc)

	res, err := svc.Verify(context.Background(), b.PaymentRef)
	require.NoError(t, err)
	require.Equal(t, models.OutcomePending, res.Outcome)
	require.Zero(t, lc.confirms)
	require.Zero(t, lc.failures)

	got, _ := store.GetByID("bk-1")
	require.Equal(t, models.PaymentPending, got.PaymentStatus)
}

func TestVerifyUnknownReference(t *testing.T) {
	svc := newReconciler(&fakeGateway{}, newBookingStore(), nil)
	_, err := svc.Verify(context.Background(), "MSRT-ghost-cafebabe")
	require.ErrorIs(t, err, payment.ErrUnknownReference)
}

func TestRefundPropagatesGatewayError(t *testing.T) {
	gatewayErr := errors.New("insufficient balance on platform account")
	gw := &fakeGateway{
		refundFn: func(context.Context, string, float64) error { return gatewayErr },
	}
	svc := newReconciler(gw, newBookingStore(), nil)

	b := pendingBooking()
	b.PaymentRef = "MSRT-bk-1-deadbeef"
	err := svc.Refund(b, 1900)
	require.ErrorIs(t, err, gatewayErr)

	gw.refundFn = nil
	require.NoError(t, svc.Refund(b, 1900))
	require.Equal(t, 2, gw.refundCalls)
}

func TestRefundRequiresReference(t *testing.T) {
	svc := newReconciler(&fakeGateway{}, newBookingStore(), nil)
	err := svc.Refund(pendingBooking(), 1900)
	require.Error(t, err)
}

func TestProbeReportsWithoutApplying(t *testing.T) {
	lc := &fakeLifecycle{store: newBookingStore()}
	gw := &fakeGateway{
		verifyFn: func(context.Context, string) (models.PaymentOutcome, string, error) {
			return models.OutcomeSuccess, "succeeded", nil
		},
	}
	svc := newReconciler(gw, newBookingStore(), lc)

	outcome, err := svc.Probe("MSRT-bk-1-deadbeef")
	require.NoError(t, err)
	require.Equal(t, models.OutcomeSuccess, outcome)
	require.Zero(t, lc.confirms)
}

func TestBookingIDFromReference(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"MSRT-bk-1-a1b2c3d4", "bk-1"},
		{"MSRT-550e8400-e29b-41d4-a716-446655440000-a1b2c3d4", "550e8400-e29b-41d4-a716-446655440000"},
		{"PSTK-bk-1-a1b2c3d4", ""},
		{"MSRT-", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, payment.BookingIDFromReference(tc.ref), tc.ref)
	}
}
