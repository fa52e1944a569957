// Package container provides a managed-object container: it creates,
// caches and tears down named component instances, resolves circular
// dependencies through early references, and guarantees a correct
// destruction order.
//
// # Overview
//
// The container is a passive, thread-shared structure. Callers request a
// component by name; on a miss the container runs a caller-supplied
// creation factory, during which the component under construction may
// resolve further components through the same container. Recorded
// dependency and containment edges drive teardown ordering: whatever
// depends on a component is destroyed before it, whatever it contains is
// destroyed after it.
//
// # Core operations
//
//	c := container.New()
//
//	// Create-or-get a shared instance. The factory runs at most once.
//	svc, err := c.GetOrCreate("mailer", func() (any, error) {
//	    return mail.Dial(addr)
//	})
//
//	// Seat a pre-built object. Never overwrites.
//	err = c.RegisterExisting("config", cfg)
//
//	// Plain lookup: absent is not an error.
//	obj, ok := c.Get("mailer")
//
// # Circular creation
//
// A factory that (transitively) requests its own name fails with
// ErrCurrentlyInCreation — unless it first registers an early factory, in
// which case the other side of the cycle receives a usable, not yet fully
// initialized reference:
//
//	c.GetOrCreate("a", func() (any, error) {
//	    a := &A{}
//	    c.RegisterEarlyFactory("a", func() any { return a })
//	    b, err := c.GetOrCreate("b", newB) // newB may Get("a") and proceed
//	    ...
//	})
//
// # Teardown
//
//	c.RegisterDisposable("pool", pool)
//	c.RegisterDependency("pool", "worker") // worker destroyed before pool
//	err := c.DestroyAll()                  // aggregated teardown report
//
// # Bindings and providers
//
// On top of the core sits a Laravel-flavoured binding layer
// (Bind/Singleton/Instance/Make, the generic Resolve helper) and the
// ServiceProvider system with eager and deferred providers. Shared
// bindings resolve through the singleton cache, so the creation guarantees
// above apply to them unchanged.
//
// # Hierarchy
//
// A container may delegate misses to a parent set once via SetParent.
// Local registrations shadow same-named parent entries structurally; the
// parent is never written to.
package container
