package core

import (
	"errors"
)

type ErrorKind uint8

const (
	_ ErrorKind = iota
	ErrorKindNotAuthenticated
	ErrorKindValidation
	ErrorKindVerification
	ErrorKindInsufficientFunds
	ErrorKindSigning
	ErrorKindSubmission
	ErrorKindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNotAuthenticated:
		return "NotAuthenticated"
	case ErrorKindValidation:
		return "Validation"
	case ErrorKindVerification:
		return "Verification"
	case ErrorKindInsufficientFunds:
		return "InsufficientFunds"
	case ErrorKindSigning:
		return "Signing"
	case ErrorKindSubmission:
		return "Submission"
	case ErrorKindPersistence:
		return "Persistence"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by wallet operations. Kind is the
// coarse category, Code narrows it (e.g. invalid_address under Validation).
type Error struct {
	Kind ErrorKind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = defaultMessages[e.Kind]
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind. A sentinel with
// a Code only matches errors carrying the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.Code == "" || t.Code == e.Code
}

// With returns a copy of the sentinel carrying msg and the wrapped cause.
func (e *Error) With(msg string, err error) *Error {
	return &Error{
		Kind: e.Kind,
		Code: e.Code,
		Msg:  msg,
		Err:  err,
	}
}

var defaultMessages = map[ErrorKind]string{
	ErrorKindNotAuthenticated:  "not authenticated",
	ErrorKindValidation:        "invalid request",
	ErrorKindVerification:      "verification failed",
	ErrorKindInsufficientFunds: "insufficient funds",
	ErrorKindSigning:           "signing failed",
	ErrorKindSubmission:        "submission failed",
	ErrorKindPersistence:       "transaction submitted but could not be recorded",
}

var (
	ErrNotAuthenticated = &Error{Kind: ErrorKindNotAuthenticated}

	ErrValidation     = &Error{Kind: ErrorKindValidation}
	ErrInvalidAmount  = &Error{Kind: ErrorKindValidation, Code: "invalid_amount", Msg: "amount must be greater than zero"}
	ErrInvalidAddress = &Error{Kind: ErrorKindValidation, Code: "invalid_address", Msg: "invalid address"}
	ErrInvalidMethod  = &Error{Kind: ErrorKindValidation, Code: "invalid_method", Msg: "unsupported payment method"}
	ErrInvalidPhone   = &Error{Kind: ErrorKindValidation, Code: "invalid_phone", Msg: "phone number required"}

	ErrVerification   = &Error{Kind: ErrorKindVerification}
	ErrDeliveryFailed = &Error{Kind: ErrorKindVerification, Code: "delivery_failed", Msg: "verification code could not be sent"}
	ErrInvalidCode    = &Error{Kind: ErrorKindVerification, Code: "invalid_code", Msg: "invalid verification code"}
	ErrNotVerified    = &Error{Kind: ErrorKindVerification, Code: "not_verified", Msg: "phone number not verified for this amount"}

	ErrInsufficientFunds = &Error{Kind: ErrorKindInsufficientFunds}
	ErrSigning           = &Error{Kind: ErrorKindSigning}
	ErrSubmission        = &Error{Kind: ErrorKindSubmission}
	ErrLedgerUnavailable = &Error{Kind: ErrorKindSubmission, Code: "ledger_unavailable", Msg: "ledger unavailable"}
	ErrPersistence       = &Error{Kind: ErrorKindPersistence}
)

// KindOf returns the kind of err, or zero if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsRetryable reports whether the caller may recover by re-issuing the
// verification step.
func IsRetryable(err error) bool {
	return KindOf(err) == ErrorKindVerification
}
