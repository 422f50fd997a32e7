package container

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Teardown ─────────────────────────────────────────────────────────────────

// Destroy tears the container down: live children are destroyed first
// (concurrently), then finalizers run for every instantiated entry — never
// for registrations that were never resolved — and the container becomes
// permanently inert. Every subsequent operation fails with
// [ErrContainerDestroyed].
//
// Finalizers settle independently; one failure never prevents the others from
// running. All failures, including those from child scopes, are aggregated
// into a single [FinalizationError].
//
// Destroy is idempotent: repeated calls succeed with no effect.
func (c *Container) Destroy() error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true

	children := make([]*Container, 0, len(c.children))
	for _, ref := range c.children {
		if child := ref.Value(); child != nil {
			children = append(children, child)
		}
	}
	c.children = nil

	// Sever the parent link so this scope can be collected independently.
	c.parent = nil

	type entry struct {
		cell *creation
		fin  func(any) error
	}
	entries := make([]entry, 0, len(c.cache))
	for tag, cell := range c.cache {
		if reg := c.registry[tag]; reg != nil && reg.finalize != nil {
			entries = append(entries, entry{cell: cell, fin: reg.finalize})
		}
	}
	// The cache is cleared; the registry is retained for diagnostics but can
	// no longer produce instances.
	c.cache = make(map[AnyTag]*creation)
	c.mu.Unlock()

	var (
		errMu sync.Mutex
		errs  []error
	)
	collect := func(err error) {
		if err != nil {
			errMu.Lock()
			errs = append(errs, err)
			errMu.Unlock()
		}
	}

	// Children strictly before own finalizers: dependents may still hold
	// instances owned by this scope.
	var wg sync.WaitGroup
	for _, child := range children {
		wg.Add(1)
		go func(child *Container) {
			defer wg.Done()
			collect(child.Destroy())
		}(child)
	}
	wg.Wait()

	for _, en := range entries {
		wg.Add(1)
		go func(en entry) {
			defer wg.Done()
			// An in-flight creation settles first; a failed one left no
			// instance behind.
			v, err := en.cell.wait()
			if err != nil {
				return
			}
			collect(en.fin(v))
		}(en)
	}
	wg.Wait()

	c.log.Debug("destroyed scope",
		zap.String("scope", c.scopeID),
		zap.Int("finalized", len(entries)),
		zap.Int("children", len(children)))

	if len(errs) > 0 {
		return &FinalizationError{errs: errs}
	}
	return nil
}

// ── Scoped use ───────────────────────────────────────────────────────────────

// Use resolves tag, invokes fn with the instance, and destroys the container
// whether fn succeeds or fails. A callback error is never masked by teardown:
// when both fail, both are surfaced in the combined error.
//
//	err := container.Use(c, StoreTag, func(s *Store) error {
//	    return s.Migrate()
//	})
func Use[T any](c *Container, tag *Tag[T], fn func(v T) error) (err error) {
	defer func() {
		err = multierr.Append(err, c.Destroy())
	}()

	v, err := Resolve(c, tag)
	if err != nil {
		return err
	}
	return fn(v)
}
