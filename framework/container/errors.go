package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ── Sentinels ─────────────────────────────────────────────────────────────────

var (
	// ErrUnregistered matches any *UnregisteredServiceError.
	ErrUnregistered = errors.New("container: service not registered")

	// ErrNoConstructor matches any *NoConstructorError.
	ErrNoConstructor = errors.New("container: no constructor")

	// ErrCyclicDependency matches any *CyclicDependencyError.
	ErrCyclicDependency = errors.New("container: cyclic dependency")

	// ErrTypeMismatch matches any *TypeMismatchError.
	ErrTypeMismatch = errors.New("container: service type mismatch")

	// ErrInvalidRegistration is returned by Register for malformed input.
	ErrInvalidRegistration = errors.New("container: invalid registration")

	// ErrDisposed is returned when resolving from a disposed container.
	ErrDisposed = errors.New("container: already disposed")
)

// ── Typed errors ──────────────────────────────────────────────────────────────

// UnregisteredServiceError reports a lookup for an identity with no entries.
type UnregisteredServiceError struct {
	Identity reflect.Type
}

func (e *UnregisteredServiceError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s]", TypeKey(e.Identity))
}

func (e *UnregisteredServiceError) Is(target error) bool { return target == ErrUnregistered }

// NoConstructorError reports a type-based registration with nothing to call.
type NoConstructorError struct {
	Identity reflect.Type
}

func (e *NoConstructorError) Error() string {
	return fmt.Sprintf("container: [%s] declares no constructor", TypeKey(e.Identity))
}

func (e *NoConstructorError) Is(target error) bool { return target == ErrNoConstructor }

// CyclicDependencyError carries the chain of identities that closed a loop.
// The last element repeats an earlier one.
type CyclicDependencyError struct {
	Chain []reflect.Type
}

func (e *CyclicDependencyError) Error() string {
	return "container: cyclic dependency detected: " + e.Path()
}

// Path renders the chain as "A -> B -> A".
func (e *CyclicDependencyError) Path() string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = TypeKey(t)
	}
	return strings.Join(names, " -> ")
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// TypeMismatchError reports a produced value that does not satisfy its identity.
type TypeMismatchError struct {
	Identity reflect.Type
	Got      reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s", TypeKey(e.Identity), e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, fmt.Sprintf(format, args...))
}
