package license

import (
	"strings"

	"licseal/internal/variant"
)

type resultStatus uint8

const (
	statusAccepted resultStatus = iota
	statusAcceptedNull
	statusRejected
)

// Result is the tri-state outcome of a field-level check: a value was
// accepted (possibly normalized), legitimately absent, or rejected with
// one or more reasons.
type Result struct {
	status  resultStatus
	value   variant.Value
	reasons []string
}

// Accepted wraps the normalized value a validator settled on.
func Accepted(v variant.Value) Result {
	return Result{status: statusAccepted, value: v}
}

// AcceptedNull marks a value as legitimately absent.
func AcceptedNull() Result {
	return Result{status: statusAcceptedNull, value: variant.Null()}
}

// Rejected marks a value as unacceptable for the given reasons.
func Rejected(reasons ...string) Result {
	return Result{status: statusRejected, reasons: reasons}
}

// IsRejected reports whether the check failed.
func (r Result) IsRejected() bool {
	return r.status == statusRejected
}

// IsNull reports whether the value was accepted as legitimately absent.
func (r Result) IsNull() bool {
	return r.status == statusAcceptedNull
}

// Value returns the normalized value for accepted results; the Null
// variant otherwise.
func (r Result) Value() variant.Value {
	if r.status == statusRejected {
		return variant.Null()
	}
	return r.value
}

// Reasons returns the rejection reasons, nil for accepted results.
func (r Result) Reasons() []string {
	return r.reasons
}

// Reason joins all rejection reasons into one message.
func (r Result) Reason() string {
	return strings.Join(r.reasons, "; ")
}
