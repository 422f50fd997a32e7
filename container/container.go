package container

import (
	"sync"
	"weak"

	"go.uber.org/zap"
)

// ── Container ────────────────────────────────────────────────────────────────

// Container is a runtime dependency registry: it creates, caches, wires
// together, and tears down service instances declared against [Tag] keys.
//
// Every container owns its registry and cache exclusively — there is no
// process-wide default container. Scoped containers created via
// [Container.Child] delegate unresolved lookups to their parent and are
// destroyed before it.
//
// All operations are safe for concurrent use.
type Container struct {
	mu sync.RWMutex

	scopeID string
	log     *zap.Logger

	// tag → creation recipe
	registry map[AnyTag]*registration

	// tag → the single in-flight-or-settled creation for that tag
	cache map[AnyTag]*creation

	// parent is non-owning: used only for delegated lookups and severed on
	// destroy. children are weak so the parent never keeps a child alive.
	parent   *Container
	children []weak.Pointer[Container]

	destroyed bool
}

// Option configures a container at construction time.
type Option func(*Container)

// WithLogger attaches a logger; register, create, and destroy events are
// emitted at debug level. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		c.log = log
	}
}

// WithScopeID overrides the root container's scope id (default "root").
// Child scope ids are set by [Container.Child].
func WithScopeID(id string) Option {
	return func(c *Container) {
		c.scopeID = id
	}
}

// New creates an empty container ready for registration.
func New(opts ...Option) *Container {
	c := &Container{
		scopeID:  "root",
		log:      zap.NewNop(),
		registry: make(map[AnyTag]*registration),
		cache:    make(map[AnyTag]*creation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScopeID returns the container's scope identifier.
func (c *Container) ScopeID() string { return c.scopeID }

// ── Registration ─────────────────────────────────────────────────────────────

// Register binds a spec to a tag.
//
//	container.Register(c, StoreTag, container.Spec[*Store]{
//	    Create: func(ctx *container.Context) (*Store, error) {
//	        cfg, err := container.Resolve(ctx, ConfigTag)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return OpenStore(cfg.DSN)
//	    },
//	    Cleanup: func(s *Store) error { return s.Close() },
//	})
//
// Registering the same tag again replaces the entry — but only while no
// instance has been cached for it; once instantiated, re-registration fails
// with [ErrAlreadyInstantiated] so already-injected instances are never
// silently stranded.
func Register[T any](c *Container, tag *Tag[T], spec Spec[T]) error {
	reg, err := spec.normalize()
	if err != nil {
		return err
	}
	return c.register(tag, reg)
}

// RegisterValue binds a pre-built value to a tag, with no cleanup.
func RegisterValue[T any](c *Container, tag *Tag[T], v T) error {
	return Register(c, tag, Provide(func(*Context) (T, error) {
		return v, nil
	}))
}

func (c *Container) register(tag AnyTag, reg *registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return errDestroyed("register", c.scopeID)
	}
	if _, ok := c.cache[tag]; ok {
		return errAlreadyInstantiated(tag)
	}

	c.registry[tag] = reg
	c.log.Debug("registered dependency",
		zap.Stringer("tag", tag),
		zap.String("scope", c.scopeID))
	return nil
}

// ── Lookups ──────────────────────────────────────────────────────────────────

// Has reports whether a registration for tag exists in this container or any
// ancestor. Local state is checked first.
func (c *Container) Has(tag AnyTag) bool {
	c.mu.RLock()
	_, ok := c.registry[tag]
	parent := c.parent
	c.mu.RUnlock()

	if ok {
		return true
	}
	if parent != nil {
		return parent.Has(tag)
	}
	return false
}

// Exists reports whether an instance for tag has been created (or is being
// created) in this container or any ancestor.
func (c *Container) Exists(tag AnyTag) bool {
	c.mu.RLock()
	_, ok := c.cache[tag]
	parent := c.parent
	c.mu.RUnlock()

	if ok {
		return true
	}
	if parent != nil {
		return parent.Exists(tag)
	}
	return false
}

// Registrations returns the tags registered in this container (not ancestors),
// for debugging and diagnostics.
func (c *Container) Registrations() []AnyTag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]AnyTag, 0, len(c.registry))
	for tag := range c.registry {
		out = append(out, tag)
	}
	return out
}
