package container

import (
	"fmt"
	"sync"
)

// Disposable is the teardown capability a component may register. Dispose
// is called exactly once when the component is destroyed.
type Disposable interface {
	Dispose() error
}

// DisposeFunc adapts a plain function to the Disposable interface.
type DisposeFunc func() error

func (f DisposeFunc) Dispose() error { return f() }

// DisposalRegistry tracks which named components need an explicit teardown
// callback. Insertion order is preserved: bulk shutdown tears components
// down in reverse registration order, matching reverse construction order
// for components with no recorded inter-dependencies.
type DisposalRegistry struct {
	mu    sync.Mutex
	names []string
	items map[string]Disposable
}

// NewDisposalRegistry creates an empty disposal registry.
func NewDisposalRegistry() *DisposalRegistry {
	return &DisposalRegistry{items: make(map[string]Disposable)}
}

// Register stores the teardown handle for name. Re-registering replaces
// the handle but keeps the original order slot.
func (d *DisposalRegistry) Register(name string, disposable Disposable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[name]; !ok {
		d.names = append(d.names, name)
	}
	d.items[name] = disposable
}

// Contains reports whether a teardown handle is registered for name.
func (d *DisposalRegistry) Contains(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.items[name]
	return ok
}

// take removes and returns the handle for name. Popping before invoking
// guarantees a handle never runs twice even if destruction re-reaches the
// name through a dependency cycle.
func (d *DisposalRegistry) take(name string) (Disposable, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disposable, ok := d.items[name]
	if !ok {
		return nil, false
	}
	delete(d.items, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
	return disposable, true
}

// snapshot returns the registered names in registration order.
func (d *DisposalRegistry) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// clear drops every handle.
func (d *DisposalRegistry) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = nil
	d.items = make(map[string]Disposable)
}

// dispose runs a teardown handle, converting a panic into an error so a
// misbehaving component cannot abort the rest of shutdown.
func dispose(name string, disposable Disposable) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("container: teardown of %q panicked: %v", name, rec)
		}
	}()
	return disposable.Dispose()
}
