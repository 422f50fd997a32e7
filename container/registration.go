package container

import "errors"

// ── Factories & specs ────────────────────────────────────────────────────────

// Factory builds a dependency of type T. It receives the resolution [Context]
// so it can pull further dependencies through the same engine.
type Factory[T any] func(ctx *Context) (T, error)

// Finalizer tears down an instantiated dependency during Destroy.
type Finalizer[T any] func(v T) error

// Spec describes how to build — and optionally tear down — a dependency.
// The zero Cleanup means the instance needs no teardown.
type Spec[T any] struct {
	Create  Factory[T]
	Cleanup Finalizer[T]
}

// Provide wraps a bare factory into a [Spec] with no cleanup. It exists for
// ergonomics; Spec{Create: fn} is equivalent.
func Provide[T any](fn Factory[T]) Spec[T] {
	return Spec[T]{Create: fn}
}

// normalize converts the typed spec into the untyped registration the
// container stores. Type safety is guaranteed by construction: a *Tag[T] can
// only be registered with a Spec[T], so the finalizer's assertion always holds.
func (s Spec[T]) normalize() (*registration, error) {
	if s.Create == nil {
		return nil, errors.New("container: spec has no Create factory")
	}

	reg := &registration{
		factory: func(ctx *Context) (any, error) {
			return s.Create(ctx)
		},
	}
	if s.Cleanup != nil {
		cleanup := s.Cleanup
		reg.finalize = func(v any) error {
			return cleanup(v.(T))
		}
	}
	return reg, nil
}

// registration is the stored creation recipe for one tag.
type registration struct {
	factory  func(ctx *Context) (any, error)
	finalize func(v any) error // nil when the spec declared no cleanup
}
