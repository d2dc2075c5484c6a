package models

// PaymentOutcome is the gateway's view of a transaction reference.
type PaymentOutcome string

const (
	// OutcomeSuccess and OutcomeFailed are terminal: replays must not produce
	// additional side effects.
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailed  PaymentOutcome = "failed"
	// OutcomePending means the gateway has not settled the charge yet;
	// resolution is deferred to the next webhook or poll.
	OutcomePending PaymentOutcome = "pending"
)

// Terminal reports whether the outcome will not change on replay.
func (o PaymentOutcome) Terminal() bool {
	return o == OutcomeSuccess || o == OutcomeFailed
}

// InitiateResult is returned to the client so it can redirect the guest to the
// gateway's hosted checkout page.
type InitiateResult struct {
	RedirectURL string `json:"redirect_url"`
	Reference   string `json:"reference"`
}

// VerifyResult reports the resolved state of a payment reference.
type VerifyResult struct {
	Reference string         `json:"reference"`
	BookingID string         `json:"booking_id"`
	Outcome   PaymentOutcome `json:"outcome"`
}
