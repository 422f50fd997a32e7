package container

// ── Tags ─────────────────────────────────────────────────────────────────────

// AnyTag is the untyped view of a [Tag], used as the registry and cache key.
// Tags are compared by identity (pointer equality) — never by their id string
// and never structurally. The id exists purely for diagnostics.
type AnyTag interface {
	// String returns the diagnostic id of the tag.
	String() string

	sealed()
}

// Tag identifies a dependency of type T within a container.
//
// Every call to [NewTag] allocates a fresh identity, so two tags created with
// the same id are NOT interchangeable:
//
//	a := container.NewTag[*Database]("db")
//	b := container.NewTag[*Database]("db")
//	// a != b — registering under a and resolving under b fails
//
// Declare tags once, package-level, and share them between the registering
// and the resolving side:
//
//	var (
//	    ConfigTag = container.NewTag[*Config]("config")
//	    StoreTag  = container.NewTag[*Store]("store")
//	)
type Tag[T any] struct {
	id string
}

// NewTag allocates a new tag for dependencies of type T. The id appears in
// error messages and logs; it carries no identity semantics.
func NewTag[T any](id string) *Tag[T] {
	return &Tag[T]{id: id}
}

// String returns the diagnostic id, or "anonymous" for tags created without one.
func (t *Tag[T]) String() string {
	if t.id == "" {
		return "anonymous"
	}
	return t.id
}

func (t *Tag[T]) sealed() {}
