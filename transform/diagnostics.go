package transform

import (
	"errors"
	"fmt"
	"strings"
)

// Level is severity of a diagnostic record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// String returns lower case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalText makes level readable in JSON reports.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Kind classifies diagnostics produced while resolving transforms.
type Kind int

const (
	KindNone Kind = iota
	// KindUnsupportedOperation - unknown function, operation skipped.
	KindUnsupportedOperation
	// KindMalformedOperation - wrong arity or bad number, declaration left as is.
	KindMalformedOperation
	// KindEmptyTransformList - nothing to compose, declaration left as is.
	KindEmptyTransformList
	// KindExtraArguments - arguments beyond operation arity were dropped.
	KindExtraArguments
)

// String returns kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnsupportedOperation:
		return "unsupported-operation"
	case KindMalformedOperation:
		return "malformed-operation"
	case KindEmptyTransformList:
		return "empty-transform-list"
	case KindExtraArguments:
		return "extra-arguments"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText makes kind readable in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic is a single structured message about processed value. Context
// is usually the selector of the rule being processed.
type Diagnostic struct {
	Level   Level  `json:"level"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// MalformedOperationError is returned when known transform function has
// wrong number of arguments or an argument is not a number.
type MalformedOperationError struct {
	Operation string // function name
	Selector  string // context the value came from
	Args      string // raw argument text
	Token     string // offending token
	Required  int
	Err       error // number parsing error, nil for arity errors
}

// ErrNotFinite is set as Err of MalformedOperationError when composing
// operations overflows the float64 range.
var ErrNotFinite = errors.New("composed matrix is not finite")

func (e *MalformedOperationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "malformed %s(%s)", e.Operation, e.Args)
	if len(e.Selector) > 0 {
		fmt.Fprintf(&sb, " in selector %q", e.Selector)
	}
	switch {
	case errors.Is(e.Err, ErrNotFinite):
		sb.WriteString(": composed matrix is not finite")
	case e.Err != nil:
		fmt.Fprintf(&sb, ": invalid number %q", e.Token)
	default:
		fmt.Fprintf(&sb, ": expected at least %d argument(s)", e.Required)
	}
	return sb.String()
}

func (e *MalformedOperationError) Unwrap() error {
	return e.Err
}
