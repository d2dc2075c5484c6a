package payment

import "fmt"

// ReconcileError is a typed payment failure surfaced to handlers.
type ReconcileError struct {
	Code    string
	Message string
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrGatewayUnconfigured is returned when no gateway key is set.
	ErrGatewayUnconfigured = &ReconcileError{Code: "gatewayUnconfigured", Message: "payment gateway is not configured"}
	// ErrAlreadyProcessed rejects a second initiation while an attempt is
	// active or payment has already reached a terminal state.
	ErrAlreadyProcessed = &ReconcileError{Code: "alreadyProcessed", Message: "payment has already been initiated or resolved for this booking"}
	// ErrAmountMismatch rejects a client-declared amount that diverges from
	// the server-computed total. Raised before any external call.
	ErrAmountMismatch = &ReconcileError{Code: "amountMismatch", Message: "declared amount does not match the booking total"}
	// ErrUnknownReference means no booking carries this external reference.
	ErrUnknownReference = &ReconcileError{Code: "unknownReference", Message: "unknown payment reference"}
	// ErrGatewayTimeout means the outbound call timed out. The attempt stays
	// pending because the charge may have succeeded gateway-side.
	ErrGatewayTimeout = &ReconcileError{Code: "gatewayTimeout", Message: "payment gateway timed out; the attempt remains pending"}
)
