package container

import "sync"

// ── Builder ──────────────────────────────────────────────────────────────────

// Builder accumulates registrations before finalizing them into a container.
// It is the registration surface used by composition layers; entries added
// for the same tag follow the usual last-write-wins rule.
type Builder struct {
	mu      sync.Mutex
	opts    []Option
	entries map[AnyTag]*registration
	order   []AnyTag
	sealed  bool
}

// NewBuilder creates an empty builder. Options are applied to the container
// produced by [Builder.Build].
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		opts:    opts,
		entries: make(map[AnyTag]*registration),
	}
}

// Add stages a registration. It fails with [ErrBuilderSealed] once Build has
// been called.
func Add[T any](b *Builder, tag *Tag[T], spec Spec[T]) error {
	reg, err := spec.normalize()
	if err != nil {
		return err
	}
	return b.add(tag, reg)
}

// AddValue stages a pre-built value, with no cleanup.
func AddValue[T any](b *Builder, tag *Tag[T], v T) error {
	return Add(b, tag, Provide(func(*Context) (T, error) {
		return v, nil
	}))
}

func (b *Builder) add(tag AnyTag, reg *registration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return ErrBuilderSealed
	}
	if _, ok := b.entries[tag]; !ok {
		b.order = append(b.order, tag)
	}
	b.entries[tag] = reg
	return nil
}

// Has reports whether a registration for tag has been staged.
func (b *Builder) Has(tag AnyTag) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[tag]
	return ok
}

// Build seals the builder and produces a container holding every staged
// registration, in the order they were first added.
func (b *Builder) Build() (*Container, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return nil, ErrBuilderSealed
	}
	b.sealed = true

	c := New(b.opts...)
	for _, tag := range b.order {
		if err := c.register(tag, b.entries[tag]); err != nil {
			return nil, err
		}
	}
	return c, nil
}
