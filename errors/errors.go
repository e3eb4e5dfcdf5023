package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in a handle's life the error occurred
type Phase string

const (
	PhaseStartup Phase = "startup" // process-level environment checks
	PhaseInstall Phase = "install" // handle installation on a guard
	PhaseAccess  Phase = "access"  // reading guard state
	PhaseRelease Phase = "release" // explicit or automatic release
	PhaseLoad    Phase = "load"    // foreign component loading
	PhaseRuntime Phase = "runtime" // calls into the foreign component
)

// Kind categorizes the error
type Kind string

const (
	KindNotInitialized   Kind = "not_initialized"
	KindAlreadyInstalled Kind = "already_installed"
	KindInvalidInput     Kind = "invalid_input"
	KindUnsupported      Kind = "unsupported"
	KindNotFound         Kind = "not_found"
	KindExhausted        Kind = "exhausted"
	KindClosed           Kind = "closed"
	KindInvalidData      Kind = "invalid_data"
	KindInstantiation    Kind = "instantiation"
	KindCall             Kind = "call"
	KindCopied           Kind = "copied"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Family    string
	Detail    string
	Handle    uint32
	HasHandle bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Family != "" {
		b.WriteString(" in ")
		b.WriteString(e.Family)
	}
	if e.HasHandle {
		b.WriteString(" handle ")
		b.WriteString(strconv.FormatUint(uint64(e.Handle), 10))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Family sets the resource family
func (b *Builder) Family(name string) *Builder {
	b.err.Family = name
	return b
}

// Handle sets the offending handle
func (b *Builder) Handle(h uint32) *Builder {
	b.err.Handle = h
	b.err.HasHandle = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotInitialized creates a not-initialized error for state read before setup
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// AlreadyInstalled creates an error for a second handle installation
func AlreadyInstalled(existing, attempted uint32) *Error {
	return &Error{
		Phase:     PhaseInstall,
		Kind:      KindAlreadyInstalled,
		Handle:    attempted,
		HasHandle: true,
		Detail:    fmt.Sprintf("guard already owns handle %d", existing),
		Value:     existing,
	}
}

// Copied creates an error for a guard used through a copy of its owner
func Copied(phase Phase, handle uint32) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindCopied,
		Handle:    handle,
		HasHandle: true,
		Detail:    "guard copied after Install; only the original owns the handle",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported environment or operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Exhausted creates an error for a family that cannot issue more handles
func Exhausted(family string, capacity int) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindExhausted,
		Family: family,
		Detail: fmt.Sprintf("no free handles (capacity %d)", capacity),
		Value:  capacity,
	}
}

// Closed creates an error for operations on a closed family or table
func Closed(phase Phase, family string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Family: family,
		Detail: "closed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a foreign component loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error for a family module
func Instantiation(family string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Family: family,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Call creates an error for a failed call into the foreign component
func Call(family, export string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindCall,
		Family: family,
		Detail: fmt.Sprintf("call %s", export),
		Cause:  cause,
	}
}
