package desktop

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to react to it.
type Kind int

const (
	NotFound Kind = iota + 1
	InvalidArgument
	OperationFailed
	Timeout
	LaunchFailed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case OperationFailed:
		return "operation_failed"
	case Timeout:
		return "timeout"
	case LaunchFailed:
		return "launch_failed"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every desktop operation.
type Error struct {
	Kind Kind
	// Op names the operation, e.g. "capture_window".
	Op  string
	Msg string
	Err error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrNotFound        = &Error{Kind: NotFound}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrOperationFailed = &Error{Kind: OperationFailed}
	ErrTimeout         = &Error{Kind: Timeout}
	ErrLaunchFailed    = &Error{Kind: LaunchFailed}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Op
	}
	if e.Err != nil {
		if msg == "" {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels: a target with only Kind set.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

func newError(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

func invalidArgument(op string, format string, args ...any) *Error {
	return newError(InvalidArgument, op, nil, format, args...)
}

// osFailure wraps a backend error. Errors that are already typed pass
// through unchanged.
func osFailure(op string, err error, format string, args ...any) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return newError(OperationFailed, op, err, format, args...)
}
