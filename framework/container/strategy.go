package container

import (
	"fmt"
	"reflect"
)

// Kind names a construction strategy.
type Kind int

const (
	KindType Kind = iota
	KindFactory
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindFactory:
		return "factory"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Factory builds a value, resolving whatever it needs from r.
//
//	c.Bind(container.KeyOf[Mailer](), func(r container.Resolver) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewSMTP(cfg.Mail), nil
//	})
type Factory func(r Resolver) (any, error)

// Strategy describes how one instance of a service is produced, independent
// of how long that instance lives. Build one with FromFactory,
// FromConstructors or FromInstance.
type Strategy interface {
	Kind() Kind
	validate(id reflect.Type) error
	produce(r *resolution, id reflect.Type) (any, error)
}

// ── Factory ───────────────────────────────────────────────────────────────────

type factoryStrategy struct {
	fn Factory
}

// FromFactory wraps a caller-supplied function.
func FromFactory(fn Factory) Strategy {
	return &factoryStrategy{fn: fn}
}

func (s *factoryStrategy) Kind() Kind { return KindFactory }

func (s *factoryStrategy) validate(_ reflect.Type) error {
	if s.fn == nil {
		return invalidf("nil factory")
	}
	return nil
}

func (s *factoryStrategy) produce(r *resolution, id reflect.Type) (any, error) {
	leave, err := r.enter(id)
	if err != nil {
		return nil, err
	}
	defer leave()

	instance, err := s.fn(r)
	if err != nil {
		return nil, err
	}
	if instance != nil && !reflect.TypeOf(instance).AssignableTo(id) {
		return nil, &TypeMismatchError{Identity: id, Got: reflect.TypeOf(instance)}
	}
	return instance, nil
}

// ── Instance ──────────────────────────────────────────────────────────────────

type instanceStrategy struct {
	value any
}

// FromInstance always hands out v. It never constructs anything, so it does
// not take part in cycle detection.
func FromInstance(v any) Strategy {
	return &instanceStrategy{value: v}
}

func (s *instanceStrategy) Kind() Kind { return KindInstance }

func (s *instanceStrategy) validate(id reflect.Type) error {
	if s.value == nil {
		return invalidf("nil instance for [%s]", TypeKey(id))
	}
	if t := reflect.TypeOf(s.value); !t.AssignableTo(id) {
		return invalidf("instance of %s is not assignable to [%s]", t, TypeKey(id))
	}
	return nil
}

func (s *instanceStrategy) produce(_ *resolution, _ reflect.Type) (any, error) {
	return s.value, nil
}

// ── Type (constructor injection) ──────────────────────────────────────────────

var (
	errorType    = reflect.TypeFor[error]()
	resolverType = reflect.TypeFor[Resolver]()
)

type typeStrategy struct {
	raw   []any
	ctors []constructor
}

// FromConstructors builds a service by constructor injection. Every ctor is a
// func whose parameters are service identities and which returns the service,
// optionally followed by an error:
//
//	container.FromConstructors(NewUserService, NewUserServiceWithCache)
//
// At construction time the ctor with the most resolvable parameters wins,
// earliest declared on a tie, and each of its parameters is then resolved in
// order. A parameter of type Resolver receives the live resolver.
func FromConstructors(ctors ...any) Strategy {
	return &typeStrategy{raw: ctors}
}

func (s *typeStrategy) Kind() Kind { return KindType }

func (s *typeStrategy) validate(id reflect.Type) error {
	s.ctors = make([]constructor, 0, len(s.raw))
	for i, raw := range s.raw {
		ctor, err := newConstructor(raw, id)
		if err != nil {
			return invalidf("constructor %d for [%s]: %v", i, TypeKey(id), err)
		}
		s.ctors = append(s.ctors, ctor)
	}
	return nil
}

func (s *typeStrategy) produce(r *resolution, id reflect.Type) (any, error) {
	leave, err := r.enter(id)
	if err != nil {
		return nil, err
	}
	defer leave()

	if len(s.ctors) == 0 {
		return nil, &NoConstructorError{Identity: id}
	}

	ctor := s.ctors[selectConstructor(s.ctors, func(p reflect.Type) bool {
		return p == resolverType || r.CanResolve(p)
	})]

	args := make([]reflect.Value, len(ctor.params))
	for i, p := range ctor.params {
		if p == resolverType {
			args[i] = reflect.ValueOf(Resolver(r))
			continue
		}
		dep, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			args[i] = reflect.Zero(p)
		} else {
			args[i] = reflect.ValueOf(dep)
		}
	}
	return ctor.call(args)
}

// constructor is the static metadata of one declared ctor func.
type constructor struct {
	fn         reflect.Value
	params     []reflect.Type
	returnsErr bool
}

func newConstructor(raw any, id reflect.Type) (constructor, error) {
	if raw == nil {
		return constructor{}, fmt.Errorf("nil constructor")
	}
	fn := reflect.ValueOf(raw)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return constructor{}, fmt.Errorf("%s is not a func", ft)
	}
	if ft.IsVariadic() {
		return constructor{}, fmt.Errorf("variadic constructor %s", ft)
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return constructor{}, fmt.Errorf("%s must return T or (T, error)", ft)
	}
	if !ft.Out(0).AssignableTo(id) {
		return constructor{}, fmt.Errorf("%s is not assignable to %s", ft.Out(0), TypeKey(id))
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	return constructor{fn: fn, params: params, returnsErr: ft.NumOut() == 2}, nil
}

func (c constructor) call(args []reflect.Value) (any, error) {
	out := c.fn.Call(args)
	if c.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// selectConstructor ranks ctors by how many parameters can resolves and
// returns the index of the first one with the highest count.
func selectConstructor(ctors []constructor, can func(reflect.Type) bool) int {
	best, bestScore := 0, -1
	for i, ctor := range ctors {
		score := 0
		for _, p := range ctor.params {
			if can(p) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindType, KindFactory, KindInstance} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("container: unknown strategy %q", text)
}
