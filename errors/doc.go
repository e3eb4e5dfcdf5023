// Package errors provides structured error types for handle-guard.
//
// Errors are categorized by Phase (which stage of a handle's life failed) and
// Kind (error category). The Error type carries the resource family, the
// offending handle when there is one, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRelease, errors.KindNotInitialized).
//		Family("connection").
//		Detail("release called before a handle was installed").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotInitialized(errors.PhaseAccess, "guard handle")
//	err := errors.Exhausted("wallet", 16383)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when phase and kind agree.
package errors
