package container

import (
	"sync"

	"go.uber.org/zap"
)

// Factory builds one raw object. The registry invokes it at most once per
// successful registration; how the object is constructed (and how partial
// side effects are rolled back on failure) is entirely the factory's
// business.
type Factory func() (any, error)

// EarlyFactory mints an early reference to an object that is still being
// created, so that a circular dependency can be satisfied with a usable
// (if not fully initialized) reference instead of deadlocking.
type EarlyFactory func() any

// SingletonRegistry is the shared object cache and circular-dependency
// resolver. It stores finished objects, early references exposed during
// circular creation, and the factories used to mint them.
//
// All mutable state is guarded by one registry-wide reentrant mutex.
// Creation factories run while it is held: nested resolutions from inside
// a factory re-take it on the same goroutine, every other goroutine blocks
// until the creation completes. Deliberately one lock, not per-name locks,
// so nested creation can never deadlock on lock ordering.
type SingletonRegistry struct {
	mu reentrantLock

	objects        map[string]any          // finished cache
	earlyObjects   map[string]any          // early references, live only while in creation
	earlyFactories map[string]EarlyFactory // pending early-reference suppliers
	registered     []string                // names in registration order
	registeredSet  map[string]struct{}
	inCreation     map[string]struct{} // names currently inside their factory
	exclusions     map[string]struct{} // names exempt from in-creation tracking
	suppressed     []error             // nested failures recorded during an outer creation
	recording      bool
	destroying     bool

	log *zap.Logger
}

// NewSingletonRegistry creates an empty registry. A nil logger disables
// creation logging.
func NewSingletonRegistry(log *zap.Logger) *SingletonRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &SingletonRegistry{
		objects:        make(map[string]any),
		earlyObjects:   make(map[string]any),
		earlyFactories: make(map[string]EarlyFactory),
		registeredSet:  make(map[string]struct{}),
		inCreation:     make(map[string]struct{}),
		exclusions:     make(map[string]struct{}),
		log:            log,
	}
}

// Mutex exposes the registry mutex. Collaborators that extend the creation
// protocol must synchronize on it rather than on a lock of their own.
func (r *SingletonRegistry) Mutex() sync.Locker { return &r.mu }

// GetOrCreate returns the finished object for name, invoking factory to
// build it if none exists yet. Concurrent callers for the same name block
// until the first creation completes and then observe the same object.
//
// A factory that transitively requests its own name gets
// ErrCurrentlyInCreation unless the name is exclusion-listed or an early
// reference can be served through Get. Factory errors propagate unchanged
// after the registry rolls the name back, so a failed name is retryable.
func (r *SingletonRegistry) GetOrCreate(name string, factory Factory) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if obj, ok := r.objects[name]; ok {
		return obj, nil
	}
	if r.destroying {
		return nil, creationErr("create", name, ErrCreationDisallowed)
	}
	if err := r.beforeCreation(name); err != nil {
		return nil, err
	}
	r.log.Debug("creating shared instance", zap.String("component", name))

	record := !r.recording
	if record {
		r.recording = true
	}
	obj, err := factory()
	r.afterCreation(name)
	if err != nil {
		if record {
			if len(r.suppressed) > 0 {
				r.log.Debug("errors suppressed during creation",
					zap.String("component", name), zap.Errors("suppressed", r.suppressed))
			}
		} else {
			r.suppressed = append(r.suppressed, err)
		}
		r.rollback(name, record)
		return nil, err
	}
	if record {
		r.recording = false
		r.suppressed = nil
	}
	r.add(name, obj)
	return obj, nil
}

func (r *SingletonRegistry) rollback(name string, record bool) {
	if record {
		r.recording = false
		r.suppressed = nil
	}
	r.remove(name)
}

// Get returns the finished object for name if present. While name is in
// creation and allowEarly is set, it materializes (once) and returns the
// early reference from a registered EarlyFactory. Otherwise it reports
// absence.
func (r *SingletonRegistry) Get(name string, allowEarly bool) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if obj, ok := r.objects[name]; ok {
		return obj, true
	}
	if _, busy := r.inCreation[name]; !busy {
		return nil, false
	}
	if obj, ok := r.earlyObjects[name]; ok {
		return obj, true
	}
	if !allowEarly {
		return nil, false
	}
	factory, ok := r.earlyFactories[name]
	if !ok {
		return nil, false
	}
	obj := factory()
	r.earlyObjects[name] = obj
	delete(r.earlyFactories, name)
	return obj, true
}

// RegisterEarlyFactory registers a supplier able to mint an early reference
// for name. It has no effect once name is finished.
func (r *SingletonRegistry) RegisterEarlyFactory(name string, factory EarlyFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.objects[name]; done {
		return
	}
	r.earlyFactories[name] = factory
	delete(r.earlyObjects, name)
	r.markRegistered(name)
}

// RegisterExisting seats a pre-built object as the finished entry for name.
// It never overwrites: a second registration under the same name fails with
// ErrDuplicateRegistration.
func (r *SingletonRegistry) RegisterExisting(name string, obj any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objects[name]; exists {
		return creationErr("register", name, ErrDuplicateRegistration)
	}
	r.add(name, obj)
	return nil
}

// add seats obj as the finished entry and drops every pre-finished trace.
// Caller must hold the registry mutex.
func (r *SingletonRegistry) add(name string, obj any) {
	r.objects[name] = obj
	delete(r.earlyObjects, name)
	delete(r.earlyFactories, name)
	r.markRegistered(name)
}

func (r *SingletonRegistry) markRegistered(name string) {
	if _, ok := r.registeredSet[name]; ok {
		return
	}
	r.registeredSet[name] = struct{}{}
	r.registered = append(r.registered, name)
}

// remove purges every trace of name: finished entry, early reference,
// early factory, in-creation mark and registration-order slot. Used for
// rollback after a failed creation and as a step of destruction.
// Caller must hold the registry mutex.
func (r *SingletonRegistry) remove(name string) {
	delete(r.objects, name)
	delete(r.earlyObjects, name)
	delete(r.earlyFactories, name)
	delete(r.inCreation, name)
	if _, ok := r.registeredSet[name]; ok {
		delete(r.registeredSet, name)
		for i, n := range r.registered {
			if n == name {
				r.registered = append(r.registered[:i], r.registered[i+1:]...)
				break
			}
		}
	}
}

// Remove is the exported form of remove for collaborators driving a custom
// creation protocol.
func (r *SingletonRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(name)
}

// Contains reports whether name has a finished object.
func (r *SingletonRegistry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.objects[name]
	return ok
}

// Names returns the registered names as a stable snapshot in registration
// order.
func (r *SingletonRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.registered))
	copy(out, r.registered)
	return out
}

// Count returns the number of registered names.
func (r *SingletonRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registered)
}

// SetCurrentlyInCreation toggles in-creation tracking for name. Passing
// false exclusion-lists the name: its creation protocol tolerates
// re-entrance and the registry stops policing it.
func (r *SingletonRegistry) SetCurrentlyInCreation(name string, inCreation bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inCreation {
		delete(r.exclusions, name)
	} else {
		r.exclusions[name] = struct{}{}
	}
}

// IsCurrentlyInCreation reports whether name is inside its creation factory
// and not exclusion-listed.
func (r *SingletonRegistry) IsCurrentlyInCreation(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, excluded := r.exclusions[name]; excluded {
		return false
	}
	_, busy := r.inCreation[name]
	return busy
}

// RecordSuppressed records an error swallowed during an outer creation,
// e.g. a tolerated circular-reference resolution failure, so it can be
// reported alongside the creation outcome. No-op outside a creation.
func (r *SingletonRegistry) RecordSuppressed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		r.suppressed = append(r.suppressed, err)
	}
}

func (r *SingletonRegistry) beforeCreation(name string) error {
	if _, excluded := r.exclusions[name]; excluded {
		return nil
	}
	if _, busy := r.inCreation[name]; busy {
		return creationErr("create", name, ErrCurrentlyInCreation)
	}
	r.inCreation[name] = struct{}{}
	return nil
}

func (r *SingletonRegistry) afterCreation(name string) {
	if _, excluded := r.exclusions[name]; excluded {
		return
	}
	delete(r.inCreation, name)
}

// beginDestruction flips the teardown flag: creation attempts fail fast
// from here until clearAll.
func (r *SingletonRegistry) beginDestruction() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroying = true
}

// clearAll wipes every map and unmarks the teardown state.
func (r *SingletonRegistry) clearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = make(map[string]any)
	r.earlyObjects = make(map[string]any)
	r.earlyFactories = make(map[string]EarlyFactory)
	r.registered = nil
	r.registeredSet = make(map[string]struct{})
	r.destroying = false
}
