// Package container provides a dependency-injection container: a runtime
// registry that creates, caches, wires together, and tears down service
// instances according to a statically declared dependency graph — without
// reflection.
//
// # Overview
//
//  1. Declare tags: typed identity tokens for your dependencies
//  2. Register specs: a factory plus an optional cleanup per tag
//  3. Resolve: instances are created lazily, cached as singletons, and shared
//     across concurrent resolves
//  4. Destroy: finalizers run for everything that was actually created
//
// # Tags
//
// A tag is an identity token, compared by reference — its id string is purely
// diagnostic, and two tags with the same id are distinct:
//
//	var (
//	    ConfigTag = container.NewTag[*Config]("config")
//	    DBTag     = container.NewTag[*sql.DB]("db")
//	)
//
// # Registration & resolution
//
//	c := container.New()
//
//	container.RegisterValue(c, ConfigTag, loadConfig())
//
//	container.Register(c, DBTag, container.Spec[*sql.DB]{
//	    Create: func(ctx *container.Context) (*sql.DB, error) {
//	        cfg, err := container.Resolve(ctx, ConfigTag)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return sql.Open("sqlite3", cfg.DSN)
//	    },
//	    Cleanup: func(db *sql.DB) error { return db.Close() },
//	})
//
//	db, err := container.Resolve(c, DBTag)
//
// Factories pull their own dependencies through the resolution [Context];
// the engine detects cycles and reports the full chain. Any number of
// goroutines may resolve the same tag concurrently — the factory runs exactly
// once and everyone shares the instance.
//
// # Scopes
//
// Child containers delegate unresolved lookups to their parent and may shadow
// parent registrations locally:
//
//	reqScope, err := c.Child("request-42")
//	// reqScope sees everything c provides, plus its own registrations
//
// Destroying a parent destroys live children first; a child the caller simply
// drops is eligible for garbage collection because the parent only holds a
// weak reference to it.
//
// # Teardown
//
//	err := c.Destroy()
//
// Cleanups run only for dependencies that were actually created, settle
// independently, and every failure is collected into one
// [FinalizationError]. A destroyed container is permanently inert.
//
// For one-shot work there is [Use], which guarantees teardown around a
// callback:
//
//	err := container.Use(c, DBTag, func(db *sql.DB) error {
//	    return migrate(db)
//	})
//
// # Errors
//
// Every failure is classified by a taxonomy sentinel — [ErrUnknownDependency],
// [ErrCircularDependency], [ErrContainerDestroyed], [ErrAlreadyInstantiated] —
// matched with errors.Is. Factory failures are wrapped in [CreationError]
// (use RootCause to skip nested wrappers) and finalizer failures in
// [FinalizationError] (AllErrors returns every one).
package container
