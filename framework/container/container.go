package container

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Contracts ─────────────────────────────────────────────────────────────────

// Resolver looks services up by identity. *Container implements it, and so
// does the value handed to factories and constructors during a resolution.
type Resolver interface {
	// Resolve builds the most recently registered entry for id.
	Resolve(id reflect.Type) (any, error)
	// ResolveAll builds every entry for id, in registration order.
	ResolveAll(id reflect.Type) ([]any, error)
	// CanResolve reports whether id has at least one entry.
	CanResolve(id reflect.Type) bool
}

// Disposable is implemented by services that hold resources. io.Closer is
// honoured as well.
type Disposable interface {
	Dispose() error
}

// entry is one registration. Entries are append-only and never mutated.
type entry struct {
	index     int
	id        reflect.Type
	strategy  Strategy
	lifecycle Lifecycle
	keeper    keeper
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container.
//
// It supports:
//   - Register / Bind / Singleton / Instance / BindType / SingletonType
//   - Resolve (last registration wins) and ResolveAll (every registration)
//   - constructor injection with best-match ctor selection
//   - cycle detection with a readable chain
//   - Dispose of everything it produced
//   - AfterResolving callbacks
//
// Registration may be guarded by the container's lock, but a single
// container must not resolve from several goroutines at once.
type Container struct {
	mu sync.RWMutex

	// registration order; several entries may share an identity
	entries []*entry

	// resolved callbacks: []func(identity, instance)
	afterResolving []func(reflect.Type, any)

	disposed bool
	log      *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for debug tracing and disposal failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger replaces the container's logger. Call it during bootstrap, once
// the configured logger can be built.
func (c *Container) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

func (c *Container) logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.log
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register appends an entry for id. Existing entries for id are kept; a
// later Resolve returns the newest one and ResolveAll returns all of them.
// A fixed instance is always shared regardless of lc.
func (c *Container) Register(id reflect.Type, s Strategy, lc Lifecycle) error {
	if id == nil {
		return invalidf("nil identity")
	}
	if s == nil {
		return invalidf("nil strategy for [%s]", TypeKey(id))
	}
	if err := s.validate(id); err != nil {
		return err
	}
	if s.Kind() == KindInstance {
		lc = Singleton
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	e := &entry{
		index:     len(c.entries),
		id:        id,
		strategy:  s,
		lifecycle: lc,
		keeper:    newKeeper(id, s, lc),
	}
	c.entries = append(c.entries, e)

	c.log.Debug("service registered",
		zap.String("service", TypeKey(id)),
		zap.Stringer("strategy", s.Kind()),
		zap.Stringer("lifecycle", lc),
		zap.Int("index", e.index),
	)
	return nil
}

// Bind registers a transient factory.
//
//	c.Bind(container.KeyOf[UserRepository](), func(r container.Resolver) (any, error) {
//	    return &SQLUserRepository{}, nil
//	})
func (c *Container) Bind(id reflect.Type, factory Factory) {
	c.mustRegister(id, FromFactory(factory), Transient)
}

// Singleton registers a factory whose result is cached after first resolution.
func (c *Container) Singleton(id reflect.Type, factory Factory) {
	c.mustRegister(id, FromFactory(factory), Singleton)
}

// Instance registers a pre-built value.
//
//	c.Instance(container.KeyOf[*config.Config](), cfg)
func (c *Container) Instance(id reflect.Type, instance any) {
	c.mustRegister(id, FromInstance(instance), Singleton)
}

// BindType registers transient constructor injection.
//
//	c.BindType(container.KeyOf[Notifier](), NewEmailNotifier, NewSMSNotifier)
func (c *Container) BindType(id reflect.Type, ctors ...any) {
	c.mustRegister(id, FromConstructors(ctors...), Transient)
}

// SingletonType registers constructor injection built once and cached.
func (c *Container) SingletonType(id reflect.Type, ctors ...any) {
	c.mustRegister(id, FromConstructors(ctors...), Singleton)
}

func (c *Container) mustRegister(id reflect.Type, s Strategy, lc Lifecycle) {
	if err := c.Register(id, s, lc); err != nil {
		panic(err.Error())
	}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve builds the most recently registered entry for id, together with
// everything it transitively needs.
func (c *Container) Resolve(id reflect.Type) (any, error) {
	r, err := c.begin(id, "resolve")
	if err != nil {
		return nil, err
	}
	instance, err := r.Resolve(id)
	c.finish(r, id, err)
	return instance, err
}

// ResolveAll builds every entry registered for id, in registration order.
func (c *Container) ResolveAll(id reflect.Type) ([]any, error) {
	r, err := c.begin(id, "resolve all")
	if err != nil {
		return nil, err
	}
	instances, err := r.ResolveAll(id)
	c.finish(r, id, err)
	return instances, err
}

// CanResolve reports whether at least one entry is registered for id.
func (c *Container) CanResolve(id reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// begin opens the resolution context owned by a top-level call.
func (c *Container) begin(id reflect.Type, op string) (*resolution, error) {
	c.mu.RLock()
	disposed := c.disposed
	c.mu.RUnlock()
	if disposed {
		return nil, ErrDisposed
	}
	r := newResolution(c)
	c.logger().Debug(op,
		zap.String("service", TypeKey(id)),
		zap.Stringer("resolution", r.id),
	)
	return r, nil
}

func (c *Container) finish(r *resolution, id reflect.Type, err error) {
	if err == nil {
		return
	}
	var cycle *CyclicDependencyError
	if errors.As(err, &cycle) {
		c.logger().Warn("cyclic dependency rejected",
			zap.String("service", TypeKey(id)),
			zap.Stringer("resolution", r.id),
			zap.String("chain", cycle.Path()),
		)
		return
	}
	c.logger().Debug("resolution failed",
		zap.String("service", TypeKey(id)),
		zap.Stringer("resolution", r.id),
		zap.Error(err),
	)
}

// matching returns the entries for id in registration order. Like last, it
// refuses once the container is disposed, so a Resolver kept by a service
// cannot build instances Dispose would never see.
func (c *Container) matching(id reflect.Type) ([]*entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	var out []*entry
	for _, e := range c.entries {
		if e.id == id {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, &UnregisteredServiceError{Identity: id}
	}
	return out, nil
}

// last returns the newest entry for id.
func (c *Container) last(id reflect.Type) (*entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].id == id {
			return c.entries[i], nil
		}
	}
	return nil, &UnregisteredServiceError{Identity: id}
}

// produce runs one entry inside resolution r.
func (c *Container) produce(r *resolution, e *entry) (any, error) {
	instance, err := e.keeper.construct(r)
	if err != nil {
		return nil, err
	}
	c.fireAfterResolving(e.id, instance)
	return instance, nil
}

// ── Disposal ──────────────────────────────────────────────────────────────────

// Dispose releases every Disposable or io.Closer instance the container
// produced, including fixed instances and nested dependencies. Each distinct
// instance is released once. Only the first call does any work.
func (c *Container) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	entries := c.entries
	log := c.log
	c.mu.Unlock()

	seen := make(map[any]struct{})
	var errs error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		produced := e.keeper.produced()
		for j := len(produced) - 1; j >= 0; j-- {
			instance := produced[j]
			if instance == nil {
				continue
			}
			if reflect.TypeOf(instance).Kind() == reflect.Pointer {
				if _, dup := seen[instance]; dup {
					continue
				}
				seen[instance] = struct{}{}
			}
			if err := release(instance); err != nil {
				log.Warn("dispose failed",
					zap.String("service", TypeKey(e.id)),
					zap.Error(err),
				)
				errs = multierr.Append(errs, fmt.Errorf("dispose [%s]: %w", TypeKey(e.id), err))
			}
		}
	}
	return errs
}

func release(instance any) error {
	switch v := instance.(type) {
	case Disposable:
		return v.Dispose()
	case io.Closer:
		return v.Close()
	default:
		return nil
	}
}

// ── Inspection ────────────────────────────────────────────────────────────────

// Registration describes one entry, for debugging and tooling.
type Registration struct {
	Index     int          `json:"index" yaml:"index"`
	Identity  reflect.Type `json:"-" yaml:"-"`
	Service   string       `json:"service" yaml:"service"`
	Kind      Kind         `json:"strategy" yaml:"strategy"`
	Lifecycle Lifecycle    `json:"lifecycle" yaml:"lifecycle"`
}

// Registrations returns every entry in registration order.
func (c *Container) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Registration, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, Registration{
			Index:     e.index,
			Identity:  e.id,
			Service:   TypeKey(e.id),
			Kind:      e.strategy.Kind(),
			Lifecycle: e.lifecycle,
		})
	}
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired whenever an entry hands out an
// instance, cached or not.
func (c *Container) AfterResolving(cb func(id reflect.Type, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(id reflect.Type, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(id, instance)
	}
}
