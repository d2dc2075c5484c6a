// File: services/payment/gateway.go
package payment

import (
	"context"
	"fmt"
	"math"

	"meserte/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// PaymentGateway abstracts the hosted-checkout provider. The reconciler only
// ever sees our own transaction reference; how the provider keys its objects
// is the implementation's concern.
type PaymentGateway interface {
	// InitializeTransaction opens a hosted checkout for the amount and
	// returns the page the guest must be redirected to.
	InitializeTransaction(ctx context.Context, amount float64, currency, reference, callbackURL string) (string, error)
	// VerifyTransaction resolves the current outcome of a reference plus the
	// provider's raw status string for reconciliation logs.
	VerifyTransaction(ctx context.Context, reference string) (models.PaymentOutcome, string, error)
	// Refund returns amount against the charge behind the reference.
	Refund(ctx context.Context, reference string, amount float64) error
}

// StripeGateway implements PaymentGateway over Stripe Checkout. Our reference
// travels in the payment intent metadata so verification and refunds can
// re-query by reference alone.
type StripeGateway struct {
	Currency string
}

// NewStripeGateway creates a gateway for the given ISO currency code.
// stripe.Key must already be set.
func NewStripeGateway(currency string) *StripeGateway {
	return &StripeGateway{Currency: currency}
}

// InitializeTransaction creates a Checkout Session. The reference doubles as
// the Stripe idempotency key, so a crash-and-retry with the same reference
// cannot open a second checkout.
func (g *StripeGateway) InitializeTransaction(ctx context.Context, amount float64, currency, reference, callbackURL string) (string, error) {
	if currency == "" {
		currency = g.Currency
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(reference),
		SuccessURL:        stripe.String(callbackURL + "?reference=" + reference),
		CancelURL:         stripe.String(callbackURL + "?reference=" + reference + "&cancelled=1"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(toMinorUnits(amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Room reservation " + reference),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"reference": reference},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(reference)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("gateway checkout init failed for %s: %w", reference, err)
	}
	return sess.URL, nil
}

// VerifyTransaction looks up the payment intent carrying the reference.
// No intent yet means the guest never reached payment: still pending.
func (g *StripeGateway) VerifyTransaction(ctx context.Context, reference string) (models.PaymentOutcome, string, error) {
	pi, err := g.findIntent(ctx, reference)
	if err != nil {
		return models.OutcomePending, "", err
	}
	if pi == nil {
		return models.OutcomePending, "no_intent", nil
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.OutcomeSuccess, string(pi.Status), nil
	case stripe.PaymentIntentStatusCanceled:
		return models.OutcomeFailed, string(pi.Status), nil
	default:
		return models.OutcomePending, string(pi.Status), nil
	}
}

// Refund issues a partial refund against the charge behind the reference.
func (g *StripeGateway) Refund(ctx context.Context, reference string, amount float64) error {
	pi, err := g.findIntent(ctx, reference)
	if err != nil {
		return err
	}
	if pi == nil {
		return fmt.Errorf("no settled transaction found for reference %s", reference)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(pi.ID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
	}
	params.Context = ctx

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("gateway refund failed for %s: %w", reference, err)
	}
	return nil
}

func (g *StripeGateway) findIntent(ctx context.Context, reference string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['reference']:'%s'", reference),
			Context: ctx,
		},
	}

	iter := paymentintent.Search(params)
	for iter.Next() {
		return iter.PaymentIntent(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("gateway lookup failed for %s: %w", reference, err)
	}
	return nil, nil
}

// toMinorUnits converts a major-unit amount to the gateway's integer minor
// units, rounding to absorb float representation drift.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
