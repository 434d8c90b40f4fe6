package container

import (
	"fmt"
	"reflect"
)

// ── Identities ────────────────────────────────────────────────────────────────

// KeyOf returns the service identity for T. Interfaces are the usual choice:
//
//	key := container.KeyOf[UserRepository]()
//	c.SingletonType(key, NewSQLUserRepository)
//	repo, err := container.Resolve[UserRepository](c)
func KeyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// TypeKey renders an identity as a package-qualified name, e.g.
// "github.com/acme/app/users.Repository" or "*github.com/acme/app/users.Service".
func TypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + TypeKey(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves KeyOf[T]() and type-asserts the result.
//
//	// Instead of: v, err := c.Resolve(container.KeyOf[*Config]()); cfg := v.(*Config)
//	// Write:      cfg, err := container.Resolve[*Config](c)
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	instance, err := r.Resolve(KeyOf[T]())
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{Identity: KeyOf[T](), Got: reflect.TypeOf(instance)}
	}
	return typed, nil
}

// ResolveAll resolves every entry for KeyOf[T](), in registration order.
func ResolveAll[T any](r Resolver) ([]T, error) {
	instances, err := r.ResolveAll(KeyOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(instances))
	for _, instance := range instances {
		var typed T
		if instance != nil {
			var ok bool
			if typed, ok = instance.(T); !ok {
				return nil, &TypeMismatchError{Identity: KeyOf[T](), Got: reflect.TypeOf(instance)}
			}
		}
		out = append(out, typed)
	}
	return out, nil
}

// MustResolve is like Resolve but panics on failure. Use it during bootstrap.
func MustResolve[T any](r Resolver) T {
	typed, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("container: MustResolve[%s]: %v", TypeKey(KeyOf[T]()), err))
	}
	return typed
}
