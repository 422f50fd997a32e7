// Package layer provides composition sugar over the container: reusable
// registration bundles with declared provides/requires tag sets, combined
// with simple set algebra.
//
// A layer stages registrations into a [container.Builder] and declares which
// tags it provides and which it expects someone else to provide:
//
//	type StoreLayer struct{ layer.Base }
//
//	func (StoreLayer) Register(b *container.Builder) error {
//	    return container.Add(b, StoreTag, container.Spec[*Store]{
//	        Create: newStore,
//	        Cleanup: func(s *Store) error { return s.Close() },
//	    })
//	}
//	func (StoreLayer) Provides() []container.AnyTag { return []container.AnyTag{StoreTag} }
//	func (StoreLayer) Requires() []container.AnyTag { return []container.AnyTag{ConfigTag} }
//
// Layers compose with [Merge] (side by side) and [Provide] (feed one layer's
// provisions into another's requirements). [Apply] stages the result and
// validates at build time that nothing is left unsatisfied — the runtime
// replacement for compile-time dependency checking:
//
//	b := container.NewBuilder()
//	if err := layer.Apply(b, layer.Provide(AppLayer{}, ConfigLayer{}, StoreLayer{})); err != nil {
//	    return err
//	}
//	c, err := b.Build()
//
// Layers never bypass the container's invariants: all registration goes
// through the builder, never into a live cache.
package layer
