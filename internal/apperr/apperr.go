// Package apperr tags errors with a machine-checkable kind at the point of
// failure so callers never have to infer the category from message text.
package apperr

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies a failure
type Kind string

const (
	KindQuotaExceeded Kind = "quota_exceeded"
	KindTransport     Kind = "transport"
	KindAuth          Kind = "auth"
	KindSchema        Kind = "schema"
	KindInvalidInput  Kind = "invalid_input"
	KindUnknown       Kind = "unknown"
)

// Reference errors used as marks. Compare with errors.Is or KindOf.
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrTransport     = errors.New("transport failure")
	ErrAuth          = errors.New("authentication failed")
	ErrSchema        = errors.New("schema mismatch")
	ErrInvalidInput  = errors.New("invalid input")
)

var marks = []struct {
	kind Kind
	ref  error
}{
	{KindQuotaExceeded, ErrQuotaExceeded},
	{KindAuth, ErrAuth},
	{KindSchema, ErrSchema},
	{KindInvalidInput, ErrInvalidInput},
	{KindTransport, ErrTransport},
}

// default remediation hints, used when the failure site attached none
var defaultHints = map[Kind]string{
	KindQuotaExceeded: "wait for the quota window to reset or raise QUOTA_MAX (the provider allows 300 calls per day)",
	KindTransport:     "check network connectivity to the tennis provider and TENNIS_API_BASE_URL",
	KindAuth:          "verify that TENNIS_API_KEY is valid and has access to the tennis API",
	KindSchema:        "run the migrations; the sport_type enum must contain the TENNIS value",
	KindInvalidInput:  "check the request body against the documented actions",
}

func reference(kind Kind) error {
	for _, m := range marks {
		if m.kind == kind {
			return m.ref
		}
	}
	return nil
}

// New creates an error of the given kind
func New(kind Kind, msg string) error {
	err := errors.NewWithDepth(1, msg)
	if ref := reference(kind); ref != nil {
		err = errors.Mark(err, ref)
	}
	return err
}

// Newf creates a formatted error of the given kind
func Newf(kind Kind, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	if ref := reference(kind); ref != nil {
		err = errors.Mark(err, ref)
	}
	return err
}

// Wrap annotates err with msg and tags it with kind. Wrap(nil, ...) is nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.WrapWithDepth(1, err, msg)
	if ref := reference(kind); ref != nil {
		wrapped = errors.Mark(wrapped, ref)
	}
	return wrapped
}

// WithHint attaches an operator-facing remediation hint
func WithHint(err error, hint string) error {
	return errors.WithHint(err, hint)
}

// KindOf returns the kind err was tagged with, or KindUnknown
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, m := range marks {
		if errors.Is(err, m.ref) {
			return m.kind
		}
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Hints returns the hints attached along the chain, falling back to the
// default hint for the error's kind
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	hints := errors.GetAllHints(err)
	if len(hints) > 0 {
		return hints
	}
	if h, ok := defaultHints[KindOf(err)]; ok {
		return []string{h}
	}
	return nil
}

// HTTPStatus maps a kind onto the status the operator endpoint reports
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
