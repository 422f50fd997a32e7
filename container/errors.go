package container

import (
	"errors"
	"fmt"
	"strings"
)

// ── Sentinels ────────────────────────────────────────────────────────────────

// The taxonomy sentinels below classify every failure a container can produce.
// Match them with errors.Is; the structured types further down carry causes
// and diagnostic detail and are matched with errors.As.
var (
	// ErrUnknownDependency is returned when no registration for the requested
	// tag exists anywhere in the scope chain.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrCircularDependency is returned when a tag recurs within its own
	// in-progress resolution chain.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrContainerDestroyed is returned by every operation attempted on an
	// already-destroyed container.
	ErrContainerDestroyed = errors.New("container destroyed")

	// ErrAlreadyInstantiated is returned when registering over a tag that
	// already has a cached instance in this container.
	ErrAlreadyInstantiated = errors.New("dependency already instantiated")

	// ErrTypeMismatch is returned by the generic helpers when a resolved
	// value does not have the tag's declared type. It indicates a tag that
	// was registered through the untyped surface with the wrong value type.
	ErrTypeMismatch = errors.New("resolved value type mismatch")

	// ErrBuilderSealed is returned when adding to a builder after Build.
	ErrBuilderSealed = errors.New("builder already built")
)

// ── Base error ───────────────────────────────────────────────────────────────

// Error is the base container error: an operation, a message, an optional
// cause, and a map of structured details for diagnostics. Each Error also
// carries one of the taxonomy sentinels so errors.Is classifies it.
type Error struct {
	Op      string         // operation that failed: "resolve", "register", "child", ...
	Message string
	Cause   error
	Details map[string]any

	kind error // taxonomy sentinel
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("container: %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("container: %s: %s", e.Op, e.Message)
}

// Unwrap exposes both the taxonomy sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Op: op, Message: fmt.Sprintf(format, args...), kind: kind}
}

func errUnknown(tag AnyTag) *Error {
	e := newError(ErrUnknownDependency, "resolve", "no registration for [%s] in scope chain", tag)
	e.Details = map[string]any{"tag": tag.String()}
	return e
}

func errDestroyed(op, scopeID string) *Error {
	e := newError(ErrContainerDestroyed, op, "scope [%s] is destroyed", scopeID)
	e.Details = map[string]any{"scope": scopeID}
	return e
}

func errCircular(tag AnyTag, chain []AnyTag) *Error {
	ids := make([]string, 0, len(chain)+1)
	for _, t := range chain {
		ids = append(ids, t.String())
	}
	ids = append(ids, tag.String())

	e := newError(ErrCircularDependency, "resolve", "%s", strings.Join(ids, " -> "))
	e.Details = map[string]any{"tag": tag.String(), "chain": ids}
	return e
}

func errAlreadyInstantiated(tag AnyTag) *Error {
	e := newError(ErrAlreadyInstantiated, "register", "[%s] already has a cached instance", tag)
	e.Details = map[string]any{"tag": tag.String()}
	return e
}

// ── CreationError ────────────────────────────────────────────────────────────

// CreationError wraps a factory failure. The original error is preserved as
// the cause, so both errors.Is/As and [CreationError.RootCause] can reach it.
type CreationError struct {
	Tag   AnyTag
	cause error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("container: creating [%s]: %v", e.Tag, e.cause)
}

func (e *CreationError) Unwrap() error { return e.cause }

// RootCause unwraps nested CreationErrors — produced when a dependency of a
// dependency fails — down to the first non-wrapper cause.
func (e *CreationError) RootCause() error {
	cause := e.cause
	for {
		nested, ok := cause.(*CreationError)
		if !ok {
			return cause
		}
		cause = nested.cause
	}
}

// ── FinalizationError ────────────────────────────────────────────────────────

// FinalizationError reports one or more finalizer failures during Destroy.
// Finalizers settle independently, so all failures are collected — use
// [FinalizationError.AllErrors] to inspect every one, not just the first.
type FinalizationError struct {
	errs []error
}

func (e *FinalizationError) Error() string {
	if len(e.errs) == 1 {
		return fmt.Sprintf("container: destroy: %v", e.errs[0])
	}
	return fmt.Sprintf("container: destroy: %d finalizers failed (first: %v)", len(e.errs), e.errs[0])
}

// Unwrap exposes the collected failures to errors.Is/As.
func (e *FinalizationError) Unwrap() []error { return e.errs }

// AllErrors returns every underlying failure.
func (e *FinalizationError) AllErrors() []error { return e.errs }
