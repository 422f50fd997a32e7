package container

import (
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Scope hierarchy ──────────────────────────────────────────────────────────

// Child creates a scoped container with c as its parent. Lookups the child
// cannot satisfy locally are delegated upward; local registrations shadow the
// parent's. Destroying the parent destroys live children first.
//
// The parent tracks the child through a weak reference only, so an abandoned
// child can be garbage-collected without being destroyed explicitly.
//
// An empty scopeID gets a generated UUID.
func (c *Container) Child(scopeID string) (*Container, error) {
	if scopeID == "" {
		scopeID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, errDestroyed("child", c.scopeID)
	}

	child := &Container{
		scopeID:  scopeID,
		log:      c.log,
		registry: make(map[AnyTag]*registration),
		cache:    make(map[AnyTag]*creation),
		parent:   c,
	}

	// Compact collected children while appending.
	live := c.children[:0]
	for _, ref := range c.children {
		if ref.Value() != nil {
			live = append(live, ref)
		}
	}
	c.children = append(live, weak.Make(child))

	c.log.Debug("created child scope",
		zap.String("scope", scopeID),
		zap.String("parent", c.scopeID))
	return child, nil
}

// Parent returns the parent container, or nil for a root or destroyed scope.
func (c *Container) Parent() *Container {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}
