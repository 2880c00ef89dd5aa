// Package errs defines the error taxonomy shared by every stage of the
// transform pipeline. Callers branch on Kind or on a sentinel Reason with
// errors.Is instead of matching message text.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the broad category of a failure
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is bad input shape, size or type, detected before any transform
	KindValidation
	// KindRange is malformed or out-of-bounds page addressing
	KindRange
	// KindOperation means the document structure could not be decoded or re-encoded
	KindOperation
	// KindStorage means a staging write or read failed
	KindStorage
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindRange:
		return "RangeError"
	case KindOperation:
		return "OperationError"
	case KindStorage:
		return "StorageError"
	default:
		return "UnknownError"
	}
}

// Reason narrows a Kind to the specific condition that failed
type Reason string

const (
	ReasonTooLarge           Reason = "TooLarge"
	ReasonWrongType          Reason = "WrongType"
	ReasonMissing            Reason = "Missing"
	ReasonInvalidInput       Reason = "InvalidInput"
	ReasonInsufficientInputs Reason = "InsufficientInputs"
	ReasonInvalidRangeSyntax Reason = "InvalidRangeSyntax"
	ReasonPageOutOfBounds    Reason = "PageOutOfBounds"
	ReasonDecode             Reason = "Decode"
	ReasonEncode             Reason = "Encode"
	ReasonWrite              Reason = "Write"
	ReasonRead               Reason = "Read"
	ReasonNotFound           Reason = "NotFound"
)

// Sentinels for errors.Is. Only Kind and Reason take part in matching.
var (
	ErrTooLarge           = &Error{Kind: KindValidation, Reason: ReasonTooLarge}
	ErrWrongType          = &Error{Kind: KindValidation, Reason: ReasonWrongType}
	ErrMissing            = &Error{Kind: KindValidation, Reason: ReasonMissing}
	ErrInvalidInput       = &Error{Kind: KindValidation, Reason: ReasonInvalidInput}
	ErrInsufficientInputs = &Error{Kind: KindValidation, Reason: ReasonInsufficientInputs}
	ErrInvalidRangeSyntax = &Error{Kind: KindRange, Reason: ReasonInvalidRangeSyntax}
	ErrPageOutOfBounds    = &Error{Kind: KindRange, Reason: ReasonPageOutOfBounds}
	ErrDecode             = &Error{Kind: KindOperation, Reason: ReasonDecode}
	ErrEncode             = &Error{Kind: KindOperation, Reason: ReasonEncode}
	ErrWrite              = &Error{Kind: KindStorage, Reason: ReasonWrite}
	ErrRead               = &Error{Kind: KindStorage, Reason: ReasonRead}
	ErrNotFound           = &Error{Kind: KindStorage, Reason: ReasonNotFound}
)

// Error is the concrete error returned by the pipeline
type Error struct {
	Kind   Kind
	Reason Reason
	// Op is the operation or stage that failed, e.g. "split" or "stage"
	Op string
	// Token is the offending user-supplied text, if any
	Token string
	// PageCount is the page count the token was checked against (range errors)
	PageCount int
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind and Reason.
// A target with an empty Reason matches any error of its Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason of the first *Error in err's chain
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Validation builds a KindValidation error
func Validation(reason Reason, format string, v ...any) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Msg: fmt.Sprintf(format, v...)}
}

// InvalidRangeSyntax reports a token that does not match the page range grammar
func InvalidRangeSyntax(token string) *Error {
	return &Error{
		Kind:   KindRange,
		Reason: ReasonInvalidRangeSyntax,
		Token:  token,
		Msg:    fmt.Sprintf("invalid page range %q: expected N or N-M", token),
	}
}

// PageOutOfBounds reports a page number outside [1, pageCount]
func PageOutOfBounds(token string, pageCount int) *Error {
	return &Error{
		Kind:      KindRange,
		Reason:    ReasonPageOutOfBounds,
		Token:     token,
		PageCount: pageCount,
		Msg:       fmt.Sprintf("page %s is out of bounds: document has %d pages", token, pageCount),
	}
}

// Operation wraps a failure of the underlying document structure
func Operation(op string, reason Reason, err error) *Error {
	return &Error{Kind: KindOperation, Reason: reason, Op: op, Msg: "failed to process document", Err: err}
}

// Storage wraps a staging failure
func Storage(op string, reason Reason, err error) *Error {
	return &Error{Kind: KindStorage, Reason: reason, Op: op, Msg: "staging failed", Err: err}
}
