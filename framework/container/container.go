package container

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Builder builds a value with access to the container, so a component's
// construction can resolve the components it depends on.
type Builder func(c *Container) (any, error)

// binding holds a registered builder and whether its result is shared.
type binding struct {
	build  Builder
	shared bool
}

// Lookup is the contract a parent container satisfies: a read-only,
// by-name lookup. Container implements it, so containers nest directly.
type Lookup interface {
	Get(name string) (any, bool)
}

// Container is the managed-object container: a singleton cache with
// circular-dependency resolution, a destruction-ordering dependency graph,
// a disposal registry, an alias table and optional delegation to a parent
// container. One container instance is owned by whoever created it;
// shutdown is an explicit DestroyAll call.
type Container struct {
	registry *SingletonRegistry
	graph    *DependencyGraph
	disposal *DisposalRegistry
	aliases  *AliasTable

	parentMu sync.Mutex
	parent   Lookup

	bindMu   sync.RWMutex
	bindings map[string]binding

	log *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for creation and teardown reporting.
// Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) { c.log = log }
}

// New creates an empty container. The container registers itself under the
// name "container" so factories can resolve it by name.
func New(opts ...Option) *Container {
	c := &Container{
		graph:    NewDependencyGraph(),
		disposal: NewDisposalRegistry(),
		aliases:  NewAliasTable(),
		bindings: make(map[string]binding),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = NewSingletonRegistry(c.log)
	_ = c.registry.RegisterExisting("container", c)
	return c
}

// Registry exposes the singleton registry for collaborators that drive a
// custom creation protocol (early references, in-creation toggling, the
// registry mutex).
func (c *Container) Registry() *SingletonRegistry { return c.registry }

// Graph exposes the dependency graph for introspection.
func (c *Container) Graph() *DependencyGraph { return c.graph }

// Mutex exposes the registry mutex; see SingletonRegistry.Mutex.
func (c *Container) Mutex() sync.Locker { return c.registry.Mutex() }

// ── Core lookup & creation ───────────────────────────────────────────────────

// GetOrCreate returns the finished object for name, invoking factory under
// the registry mutex if it does not exist yet.
func (c *Container) GetOrCreate(name string, factory Factory) (any, error) {
	return c.registry.GetOrCreate(c.aliases.Canonical(name), factory)
}

// RegisterExisting seats a pre-built object as the finished entry for name.
func (c *Container) RegisterExisting(name string, obj any) error {
	return c.registry.RegisterExisting(c.aliases.Canonical(name), obj)
}

// RegisterEarlyFactory registers a supplier minting an early reference for
// name, enabling circular creation to resolve instead of failing.
func (c *Container) RegisterEarlyFactory(name string, factory EarlyFactory) {
	c.registry.RegisterEarlyFactory(c.aliases.Canonical(name), factory)
}

// Get returns the object for name, consulting the local registry first and
// then the parent container, if one is set. Locally registered names always
// shadow same-named parent entries.
func (c *Container) Get(name string) (any, bool) {
	if obj, ok := c.registry.Get(c.aliases.Canonical(name), true); ok {
		return obj, true
	}
	if parent := c.Parent(); parent != nil {
		return parent.Get(name)
	}
	return nil, false
}

// Contains reports whether this container holds a finished object for name.
// The parent is not consulted.
func (c *Container) Contains(name string) bool {
	return c.registry.Contains(c.aliases.Canonical(name))
}

// Names returns the locally registered names in registration order.
func (c *Container) Names() []string { return c.registry.Names() }

// Count returns the number of locally registered names.
func (c *Container) Count() int { return c.registry.Count() }

// SetCurrentlyInCreation toggles in-creation tracking for name.
func (c *Container) SetCurrentlyInCreation(name string, inCreation bool) {
	c.registry.SetCurrentlyInCreation(c.aliases.Canonical(name), inCreation)
}

// IsCurrentlyInCreation reports whether name is inside its creation factory.
func (c *Container) IsCurrentlyInCreation(name string) bool {
	return c.registry.IsCurrentlyInCreation(c.aliases.Canonical(name))
}

// ── Hierarchy ────────────────────────────────────────────────────────────────

// SetParent attaches a parent container. It may be called at most once.
func (c *Container) SetParent(parent Lookup) error {
	c.parentMu.Lock()
	defer c.parentMu.Unlock()
	if c.parent != nil {
		return creationErr("set parent", "container", ErrParentAlreadySet)
	}
	c.parent = parent
	return nil
}

// Parent returns the parent container, or nil.
func (c *Container) Parent() Lookup {
	c.parentMu.Lock()
	defer c.parentMu.Unlock()
	return c.parent
}

// ── Aliases ──────────────────────────────────────────────────────────────────

// Alias makes alias resolve to name in every container operation.
func (c *Container) Alias(name, alias string) error {
	return c.aliases.Register(name, alias)
}

// Canonical resolves a name through the alias table.
func (c *Container) Canonical(name string) string {
	return c.aliases.Canonical(name)
}

// ── Dependencies & teardown ──────────────────────────────────────────────────

// RegisterDisposable stores the teardown handle invoked when name is
// destroyed. Registration is independent of whether name holds a cached
// object.
func (c *Container) RegisterDisposable(name string, disposable Disposable) {
	c.disposal.Register(c.aliases.Canonical(name), disposable)
}

// RegisterDependency records that dependent must be destroyed strictly
// before name.
func (c *Container) RegisterDependency(name, dependent string) {
	c.graph.RecordDependency(c.aliases.Canonical(name), c.aliases.Canonical(dependent))
}

// RegisterContainment records that outer's construction nests inner's.
// Outer is destroyed before inner.
func (c *Container) RegisterContainment(inner, outer string) {
	c.graph.RecordContainment(c.aliases.Canonical(inner), c.aliases.Canonical(outer))
}

// Destroy tears down name: everything depending on it first, then its own
// teardown callback, then everything it contains. Teardown failures are
// logged, collected and returned joined; they never stop the walk.
func (c *Container) Destroy(name string) error {
	var errs []error
	c.destroyOne(c.aliases.Canonical(name), &errs)
	return errors.Join(errs...)
}

// DestroyAll tears down every component with a registered teardown handle,
// in reverse registration order, then clears all container bookkeeping.
// Creation attempts fail with ErrCreationDisallowed while it runs. The
// returned error aggregates every individual teardown failure; shutdown is
// total-effort, never fail-fast.
//
// Bindings survive: a destroyed container can build its components again.
func (c *Container) DestroyAll() error {
	c.log.Info("destroying container components", zap.Int("count", c.registry.Count()))
	c.registry.beginDestruction()

	names := c.disposal.snapshot()
	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		c.destroyOne(names[i], &errs)
	}

	c.graph.Reset()
	c.disposal.clear()
	c.registry.clearAll()
	return errors.Join(errs...)
}

func (c *Container) destroyOne(name string, errs *[]error) {
	// Rollback-safe: the cache entry goes first so nothing can observe a
	// half-destroyed component.
	c.registry.Remove(name)
	disposable, hasDisposable := c.disposal.take(name)

	for _, dependent := range c.graph.takeDependents(name) {
		c.destroyOne(dependent, errs)
	}

	if hasDisposable {
		if err := dispose(name, disposable); err != nil {
			c.log.Error("teardown callback failed",
				zap.String("component", name), zap.Error(err))
			*errs = append(*errs, fmt.Errorf("destroy %q: %w", name, err))
		}
	}

	for _, inner := range c.graph.takeContained(name) {
		c.destroyOne(inner, errs)
	}

	c.graph.Forget(name)
}

// ── Bindings ─────────────────────────────────────────────────────────────────

// Bind registers a transient builder: Make runs it on every call.
func (c *Container) Bind(name string, build Builder) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.bindings[c.aliases.Canonical(name)] = binding{build: build}
}

// Singleton registers a shared builder: the first Make creates the object
// through the registry, later calls observe the cached instance.
func (c *Container) Singleton(name string, build Builder) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.bindings[c.aliases.Canonical(name)] = binding{build: build, shared: true}
}

// Instance seats a pre-built value, dropping any binding for the name.
func (c *Container) Instance(name string, obj any) error {
	key := c.aliases.Canonical(name)
	c.bindMu.Lock()
	delete(c.bindings, key)
	c.bindMu.Unlock()
	return c.registry.RegisterExisting(key, obj)
}

// Bound reports whether name has a binding or a finished object locally.
func (c *Container) Bound(name string) bool {
	key := c.aliases.Canonical(name)
	c.bindMu.RLock()
	_, hasBinding := c.bindings[key]
	c.bindMu.RUnlock()
	return hasBinding || c.registry.Contains(key)
}

// Make resolves name through its binding. Shared bindings go through the
// singleton registry; transient bindings run their builder each call.
// Names with no binding fall back to the cached objects, local first, then
// the parent chain.
func (c *Container) Make(name string) (any, error) {
	key := c.aliases.Canonical(name)
	c.bindMu.RLock()
	b, ok := c.bindings[key]
	c.bindMu.RUnlock()

	if !ok {
		if obj, found := c.Get(key); found {
			return obj, nil
		}
		return nil, creationErr("make", key, ErrBindingNotFound)
	}
	if b.shared {
		return c.registry.GetOrCreate(key, func() (any, error) { return b.build(c) })
	}
	return b.build(c)
}

// Resolve resolves name and type-asserts the result. It panics on a failed
// build or a type mismatch; use MustResolve for the non-panicking form.
func Resolve[T any](c *Container, name string) T {
	obj, err := c.Make(name)
	if err != nil {
		panic(fmt.Sprintf("container: Resolve[%T](%q): %v", *new(T), name, err))
	}
	typed, ok := obj.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: %q resolved to %T", *new(T), name, obj))
	}
	return typed
}

// MustResolve is like Resolve but returns (T, bool) without panicking.
func MustResolve[T any](c *Container, name string) (T, bool) {
	obj, err := c.Make(name)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := obj.(T)
	return typed, ok
}
