package container

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Creation units ───────────────────────────────────────────────────────────

// creation is the single attempt to build an instance for one tag. The cell
// is inserted into the cache before its factory runs, so every concurrent
// resolve for the tag finds the same cell and waits on it — this is what
// collapses N concurrent requests into exactly one factory execution.
type creation struct {
	done  chan struct{} // closed once value/err are set
	value any
	err   error
}

func (u *creation) settle(value any, err error) {
	u.value = value
	u.err = err
	close(u.done)
}

// wait blocks until the creation settles.
func (u *creation) wait() (any, error) {
	<-u.done
	return u.value, u.err
}

// ── Resolution context ───────────────────────────────────────────────────────

// Context is the resolution context handed to factories. It exposes only
// chain-scoped resolution, so factories can pull further dependencies without
// seeing unrelated container internals.
type Context struct {
	c *Container

	// chain is the ordered list of tags currently being created, root call
	// first. It is never mutated after construction.
	chain []AnyTag
}

// ResolveAny resolves a dependency within the in-progress chain. Prefer the
// typed [Resolve] helper.
func (x *Context) ResolveAny(tag AnyTag) (any, error) {
	return x.c.resolve(tag, x.chain)
}

// Resolver is anything a dependency can be resolved through: a [*Container]
// (fresh chain) or a factory's [*Context] (in-progress chain).
type Resolver interface {
	ResolveAny(tag AnyTag) (any, error)
}

// ── Resolution ───────────────────────────────────────────────────────────────

// ResolveAny resolves a tag starting a fresh chain. Prefer the typed
// [Resolve] helper.
func (c *Container) ResolveAny(tag AnyTag) (any, error) {
	return c.resolve(tag, nil)
}

// Resolve returns the instance registered under tag, creating and caching it
// on first use. Concurrent calls for the same tag share a single creation.
//
//	store, err := container.Resolve(c, StoreTag)
func Resolve[T any](r Resolver, tag *Tag[T]) (T, error) {
	var zero T

	v, err := r.ResolveAny(tag)
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		e := newError(ErrTypeMismatch, "resolve", "[%s] resolved to %T", tag, v)
		return zero, e
	}
	return typed, nil
}

// MustResolve is like [Resolve] but panics on error. Intended for bootstrap
// code where a missing dependency is a programming error.
func MustResolve[T any](r Resolver, tag *Tag[T]) T {
	v, err := Resolve(r, tag)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveAll resolves a fixed list of tags concurrently and returns the
// instances in the same order as requested — completion order never affects
// output order. All failures are collected into one error.
func ResolveAll(r Resolver, tags ...AnyTag) ([]any, error) {
	results := make([]any, len(tags))
	errs := make([]error, len(tags))

	var wg sync.WaitGroup
	for i, tag := range tags {
		wg.Add(1)
		go func(i int, tag AnyTag) {
			defer wg.Done()
			results[i], errs[i] = r.ResolveAny(tag)
		}(i, tag)
	}
	wg.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// resolve is the engine. chain holds the tags currently being created by the
// calling factory stack, root call first; a top-level resolve starts empty.
func (c *Container) resolve(tag AnyTag, chain []AnyTag) (any, error) {
	c.mu.Lock()

	if c.destroyed {
		c.mu.Unlock()
		return nil, errDestroyed("resolve", c.scopeID)
	}

	// A tag recurring within its own chain must fail fast: its cache cell (if
	// any) belongs to an ancestor of this very call and will never settle
	// while we wait on it.
	for _, t := range chain {
		if t == tag {
			c.mu.Unlock()
			return nil, errCircular(tag, chain)
		}
	}

	if cell, ok := c.cache[tag]; ok {
		c.mu.Unlock()
		return cell.wait()
	}

	reg, ok := c.registry[tag]
	if !ok {
		parent := c.parent
		c.mu.Unlock()
		if parent != nil {
			// Parent subtrees cannot cycle back into this scope, so the
			// chain resets on delegation.
			return parent.resolve(tag, nil)
		}
		return nil, errUnknown(tag)
	}

	// The cell must be cached before the factory runs: a second resolve for
	// the same tag arriving mid-creation finds it and waits instead of
	// racing to create a duplicate.
	cell := &creation{done: make(chan struct{})}
	c.cache[tag] = cell
	c.mu.Unlock()

	c.log.Debug("creating dependency",
		zap.Stringer("tag", tag),
		zap.String("scope", c.scopeID))

	ctx := &Context{c: c, chain: append(chain[:len(chain):len(chain)], tag)}
	v, err := reg.factory(ctx)
	if err != nil {
		wrapped := &CreationError{Tag: tag, cause: err}
		cell.settle(nil, wrapped)

		// Evict so a later resolve may retry; a failed attempt must not
		// poison the cache permanently.
		c.mu.Lock()
		if c.cache[tag] == cell {
			delete(c.cache, tag)
		}
		c.mu.Unlock()

		c.log.Debug("dependency creation failed",
			zap.Stringer("tag", tag),
			zap.String("scope", c.scopeID),
			zap.Error(err))
		return nil, wrapped
	}

	cell.settle(v, nil)
	return v, nil
}
