package container

import (
	"errors"
	"fmt"
)

var (
	// ErrCurrentlyInCreation is returned when a creation factory for a name
	// ends up requesting that same name again while it is still being
	// created, and no early reference was available. Two non-shareable
	// components depending on each other cannot be resolved.
	ErrCurrentlyInCreation = errors.New("component is currently in creation")

	// ErrDuplicateRegistration is returned by RegisterExisting when the name
	// already holds a finished object. Existing objects are never overwritten.
	ErrDuplicateRegistration = errors.New("component already registered")

	// ErrCreationDisallowed is returned when a creation attempt arrives
	// while DestroyAll is running. Do not request components from inside a
	// teardown callback.
	ErrCreationDisallowed = errors.New("creation not allowed while container is shutting down")

	// ErrParentAlreadySet is returned by SetParent on a container that
	// already has a parent.
	ErrParentAlreadySet = errors.New("parent container already set")

	// ErrAliasCycle is returned when registering an alias would make the
	// alias chain loop back on itself.
	ErrAliasCycle = errors.New("alias chain would cycle")

	// ErrBindingNotFound is returned by Make for a name with no binding and
	// no registered object.
	ErrBindingNotFound = errors.New("no binding registered")
)

// CreationError wraps a container error with the component name and the
// operation that failed. Use errors.Is against the sentinel errors above.
type CreationError struct {
	Name string
	Op   string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("container: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

func creationErr(op, name string, err error) error {
	return &CreationError{Name: name, Op: op, Err: err}
}
