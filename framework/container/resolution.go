package container

import (
	"reflect"
	"slices"

	"github.com/google/uuid"
)

// resolution is the context of one top-level Resolve / ResolveAll call.
//
// It is created by the outermost call and handed down to every strategy and
// factory as the Resolver, so nested lookups join the same chain. Entries are
// pushed before a strategy constructs and popped when that construction
// returns, so the chain is empty again once the outermost call unwinds and a
// nested exit can never clear an outer entry.
type resolution struct {
	c     *Container
	id    uuid.UUID
	chain []reflect.Type
}

func newResolution(c *Container) *resolution {
	return &resolution{c: c, id: uuid.New()}
}

// enter records id on the chain, failing if it is already under construction.
// The returned func must be called when construction of id finishes.
func (r *resolution) enter(id reflect.Type) (func(), error) {
	if slices.Contains(r.chain, id) {
		cycle := make([]reflect.Type, 0, len(r.chain)+1)
		cycle = append(cycle, r.chain...)
		cycle = append(cycle, id)
		return nil, &CyclicDependencyError{Chain: cycle}
	}
	depth := len(r.chain)
	r.chain = append(r.chain, id)
	return func() { r.chain = r.chain[:depth] }, nil
}

func (r *resolution) Resolve(id reflect.Type) (any, error) {
	e, err := r.c.last(id)
	if err != nil {
		return nil, err
	}
	return r.c.produce(r, e)
}

func (r *resolution) ResolveAll(id reflect.Type) ([]any, error) {
	entries, err := r.c.matching(id)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		inst, err := r.c.produce(r, e)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (r *resolution) CanResolve(id reflect.Type) bool {
	return r.c.CanResolve(id)
}
