package analyzer

import (
	"context"
	"errors"

	"github.com/panbanda/bigo/pkg/parser"
)

// ErrEmptyCode is returned when the submitted code is blank.
var ErrEmptyCode = errors.New("No code provided")

// Error kinds reported by ErrorKind.
const (
	KindEmptyCode     = "empty_code"
	KindParseError    = "parse_error"
	KindResourceLimit = "resource_limit"
	KindCanceled      = "canceled"
	KindInternal      = "internal"
)

// ErrorKind classifies an Analyze error for logs and metrics labels.
func ErrorKind(err error) string {
	var pe *parser.ParseError
	var le *parser.LimitError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCode):
		return KindEmptyCode
	case errors.As(err, &pe):
		return KindParseError
	case errors.As(err, &le):
		return KindResourceLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
