package ports

import "fmt"

const (
	KindUnknown FailureKind = iota
	KindInsufficientDeposit
	KindInsufficientGas
	KindRejected
	KindInsufficientBalance
	KindAborted
)

type FailureKind int

func (k FailureKind) String() string {
	switch k {
	case KindInsufficientDeposit:
		return "INSUFFICIENT_DEPOSIT"
	case KindInsufficientGas:
		return "INSUFFICIENT_GAS"
	case KindRejected:
		return "REJECTED"
	case KindInsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	case KindAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Failure is an error an adapter tags with its kind at the boundary, so
// callers need not match on the message.
type Failure struct {
	Kind    FailureKind
	Message string
}

func NewFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{kind, fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	return f.Message
}
