// Package sample holds a tiny service graph used by the demo command and by
// tests that exercise the container end to end.
package sample

import (
	"github.com/google/uuid"

	"github.com/km-arc/go-ioc/framework/container"
)

// IA depends on IB and IC.
type IA interface {
	B() IB
	C() IC
}

// IB is built by constructor injection.
type IB interface {
	ID() string
}

// IC is supplied as a fixed instance.
type IC interface {
	Label() string
}

type A struct {
	b IB
	c IC
}

func NewA(b IB, c IC) *A { return &A{b: b, c: c} }

func (a *A) B() IB { return a.b }
func (a *A) C() IC { return a.c }

type B struct {
	id       string
	Disposed bool
}

func NewB() *B { return &B{id: uuid.NewString()} }

func (b *B) ID() string { return b.id }

func (b *B) Dispose() error {
	b.Disposed = true
	return nil
}

type C struct {
	label string
}

func NewC(label string) *C { return &C{label: label} }

func (c *C) Label() string { return c.label }

// Register wires the graph into c: C as a fixed instance, B by constructor
// with lifecycle lb, and A through a factory that resolves both.
func Register(c *container.Container, lb container.Lifecycle) error {
	if err := c.Register(container.KeyOf[IC](), container.FromInstance(NewC("fixed")), container.Singleton); err != nil {
		return err
	}
	if err := c.Register(container.KeyOf[IB](), container.FromConstructors(NewB), lb); err != nil {
		return err
	}
	return c.Register(container.KeyOf[IA](), container.FromFactory(func(r container.Resolver) (any, error) {
		b, err := container.Resolve[IB](r)
		if err != nil {
			return nil, err
		}
		cc, err := container.Resolve[IC](r)
		if err != nil {
			return nil, err
		}
		return NewA(b, cc), nil
	}), container.Transient)
}
