package attr

import (
	"errors"
	"fmt"
)

var (
	ErrPrematureEnd    = errors.New("attr: premature end-of-input")
	ErrTokenTooLong    = errors.New("attr: token too long")
	ErrBadEncoding     = errors.New("attr: malformed base64 data")
	ErrMalformedNumber = errors.New("attr: malformed numerical data")
	ErrTooManyValues   = errors.New("attr: too many values")
	ErrMissingValue    = errors.New("attr: missing value")
	ErrExtraAttribute  = errors.New("attr: spurious attribute")
)

// NumberError reports a numeric token that is not a plain unsigned decimal.
type NumberError struct {
	Stream  string
	Context string
	Text    string
}

func (e *NumberError) Error() string {
	text := e.Text
	if len(text) > 100 {
		text = text[:100]
	}
	return fmt.Sprintf("attr: malformed numerical data from %s while reading %s: %s", e.Stream, e.Context, text)
}

func (e *NumberError) Unwrap() error {
	return ErrMalformedNumber
}

// IsTransport reports whether err means the stream ran dry or failed.
func IsTransport(err error) bool {
	return errors.Is(err, ErrPrematureEnd)
}

// IsGrammar reports whether err is a wire grammar violation by the peer.
func IsGrammar(err error) bool {
	return errors.Is(err, ErrTokenTooLong) ||
		errors.Is(err, ErrBadEncoding) ||
		errors.Is(err, ErrMalformedNumber) ||
		errors.Is(err, ErrTooManyValues) ||
		errors.Is(err, ErrMissingValue)
}

// IsPolicy reports whether err is a strictness policy violation.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrExtraAttribute)
}

// ViolationKind maps an outcome error to a short label for logs and metrics.
func ViolationKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrPrematureEnd):
		return "premature_end"
	case errors.Is(err, ErrTokenTooLong):
		return "token_too_long"
	case errors.Is(err, ErrBadEncoding):
		return "bad_encoding"
	case errors.Is(err, ErrMalformedNumber):
		return "malformed_number"
	case errors.Is(err, ErrTooManyValues):
		return "too_many_values"
	case errors.Is(err, ErrMissingValue):
		return "missing_value"
	case errors.Is(err, ErrExtraAttribute):
		return "extra_attribute"
	default:
		return "other"
	}
}
