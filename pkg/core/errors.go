package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error the gate and the accessor return.
type ErrorKind int

// Error kinds.
const (
	KindConfig ErrorKind = iota + 1
	KindValidation
	KindNotInitialized
	KindAuth
	KindSchema
	KindEngine
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindValidation:
		return "ValidationError"
	case KindNotInitialized:
		return "NotInitialized"
	case KindAuth:
		return "AuthError"
	case KindSchema:
		return "SchemaError"
	case KindEngine:
		return "EngineError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConfig         = &Error{Kind: KindConfig}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotInitialized = &Error{Kind: KindNotInitialized}
	ErrAuth           = &Error{Kind: KindAuth}
	ErrSchema         = &Error{Kind: KindSchema}
	ErrEngine         = &Error{Kind: KindEngine}
)

// Error is the single error type surfaced to callers.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "CreateTable"
	Msg  string
	Err  error // underlying engine error, if any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ConfigErrorf builds a ConfigError.
func ConfigErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ValidationErrorf builds a ValidationError.
func ValidationErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotInitializedError builds a NotInitialized error for op.
func NotInitializedError(op string) *Error {
	return &Error{Kind: KindNotInitialized, Op: op, Msg: "database connection not established"}
}

// AuthErrorf builds an AuthError.
func AuthErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// SchemaErrorf builds a SchemaError.
func SchemaErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// EngineError wraps an error reported by the relational engine.
func EngineError(op, msg string, err error) *Error {
	return &Error{Kind: KindEngine, Op: op, Msg: msg, Err: err}
}

// WithOp returns err with Op set when err is an *Error that has none.
// Other errors are returned unchanged.
func WithOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		cp := *e
		cp.Op = op
		return &cp
	}
	return err
}
