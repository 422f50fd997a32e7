package layer

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-container/container"
)

// ErrUnsatisfied is returned by [Apply] when a layer's requirement is neither
// provided by the layer stack nor already staged in the builder.
var ErrUnsatisfied = errors.New("layer: unsatisfied requirement")

// ── Layer ────────────────────────────────────────────────────────────────────

// Layer is a reusable bundle of registrations with declared provision and
// requirement sets. Layers only ever register through a [container.Builder];
// they never touch a container's cache.
type Layer interface {
	// Register stages the layer's entries into b.
	// Do NOT resolve anything here — factories resolve at creation time.
	Register(b *container.Builder) error

	// Provides returns the tags this layer registers.
	Provides() []container.AnyTag

	// Requires returns the tags this layer's factories resolve but does not
	// register itself. [Apply] validates these at build time.
	Requires() []container.AnyTag
}

// Base is an embeddable struct with empty Provides() and Requires().
// Embed it in your layer and only override what you need.
//
//	type StoreLayer struct{ layer.Base }
//	func (StoreLayer) Register(b *container.Builder) error { ... }
type Base struct{}

func (Base) Provides() []container.AnyTag { return nil }
func (Base) Requires() []container.AnyTag { return nil }

// New builds a Layer from a register function and declared tag sets.
func New(register func(b *container.Builder) error, provides, requires []container.AnyTag) Layer {
	return &funcLayer{register: register, provides: provides, requires: requires}
}

type funcLayer struct {
	register func(b *container.Builder) error
	provides []container.AnyTag
	requires []container.AnyTag
}

func (l *funcLayer) Register(b *container.Builder) error { return l.register(b) }
func (l *funcLayer) Provides() []container.AnyTag        { return l.provides }
func (l *funcLayer) Requires() []container.AnyTag        { return l.requires }

// ── Combinators ──────────────────────────────────────────────────────────────

// Merge combines layers side by side: all entries are registered in order,
// the provision set is the union of all provisions, and requirements
// satisfied within the merged group disappear.
func Merge(layers ...Layer) Layer {
	var provides, requires []container.AnyTag
	for _, l := range layers {
		provides = append(provides, l.Provides()...)
	}
	provided := newTagSet(provides)
	for _, l := range layers {
		for _, tag := range l.Requires() {
			if !provided.has(tag) {
				requires = append(requires, tag)
			}
		}
	}

	group := layers
	return New(func(b *container.Builder) error {
		for _, l := range group {
			if err := l.Register(b); err != nil {
				return err
			}
		}
		return nil
	}, dedupe(provides), dedupe(requires))
}

// Provide feeds deps' provisions into target: the result provides what target
// provides, and requires target's unmet requirements plus everything the deps
// themselves require.
func Provide(target Layer, deps ...Layer) Layer {
	return provide(target, deps, false)
}

// ProvideMerge is [Provide], but the deps' provisions stay visible in the
// result's provision set.
func ProvideMerge(target Layer, deps ...Layer) Layer {
	return provide(target, deps, true)
}

func provide(target Layer, deps []Layer, keepDeps bool) Layer {
	var depProvides, requires []container.AnyTag
	for _, d := range deps {
		depProvides = append(depProvides, d.Provides()...)
		requires = append(requires, d.Requires()...)
	}
	provided := newTagSet(depProvides)
	for _, tag := range target.Requires() {
		if !provided.has(tag) {
			requires = append(requires, tag)
		}
	}

	provides := target.Provides()
	if keepDeps {
		provides = append(depProvides, provides...)
	}

	return New(func(b *container.Builder) error {
		for _, d := range deps {
			if err := d.Register(b); err != nil {
				return err
			}
		}
		return target.Register(b)
	}, dedupe(provides), dedupe(requires))
}

// ── Apply ────────────────────────────────────────────────────────────────────

// Apply stages a layer into the builder and validates that every tag the
// layer still requires is staged — either by the layer stack itself or by an
// earlier Apply/Add on the same builder.
func Apply(b *container.Builder, l Layer) error {
	if err := l.Register(b); err != nil {
		return err
	}
	for _, tag := range l.Requires() {
		if !b.Has(tag) {
			return fmt.Errorf("%w: [%s]", ErrUnsatisfied, tag)
		}
	}
	return nil
}

// ── Tag sets ─────────────────────────────────────────────────────────────────

// Tags are identity tokens, so plain map keys give set semantics.
type tagSet map[container.AnyTag]struct{}

func newTagSet(tags []container.AnyTag) tagSet {
	s := make(tagSet, len(tags))
	for _, tag := range tags {
		s[tag] = struct{}{}
	}
	return s
}

func (s tagSet) has(tag container.AnyTag) bool {
	_, ok := s[tag]
	return ok
}

func dedupe(tags []container.AnyTag) []container.AnyTag {
	seen := make(tagSet, len(tags))
	out := make([]container.AnyTag, 0, len(tags))
	for _, tag := range tags {
		if seen.has(tag) {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
