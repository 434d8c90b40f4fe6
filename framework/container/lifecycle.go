package container

import (
	"fmt"
	"reflect"
)

// Lifecycle decides how long a produced instance is reused.
type Lifecycle int

const (
	// Transient builds a new instance on every resolution.
	Transient Lifecycle = iota
	// Singleton builds once and hands out the cached instance afterwards.
	Singleton
)

func (l Lifecycle) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// keeper applies a lifecycle to a strategy and remembers everything it
// handed out, so the container can release it on Dispose.
type keeper interface {
	construct(r *resolution) (any, error)
	produced() []any
}

func newKeeper(id reflect.Type, s Strategy, lc Lifecycle) keeper {
	if fixed, ok := s.(*instanceStrategy); ok {
		return &fixedKeeper{value: fixed.value}
	}
	if lc == Singleton {
		return &singletonKeeper{id: id, strategy: s}
	}
	return &transientKeeper{id: id, strategy: s}
}

type transientKeeper struct {
	id       reflect.Type
	strategy Strategy
	made     []any
}

func (k *transientKeeper) construct(r *resolution) (any, error) {
	instance, err := k.strategy.produce(r, k.id)
	if err != nil {
		return nil, err
	}
	k.made = append(k.made, instance)
	return instance, nil
}

func (k *transientKeeper) produced() []any { return k.made }

type singletonKeeper struct {
	id       reflect.Type
	strategy Strategy
	instance any
	built    bool
}

func (k *singletonKeeper) construct(r *resolution) (any, error) {
	if k.built {
		return k.instance, nil
	}
	instance, err := k.strategy.produce(r, k.id)
	if err != nil {
		return nil, err
	}
	k.instance, k.built = instance, true
	return instance, nil
}

func (k *singletonKeeper) produced() []any {
	if !k.built {
		return nil
	}
	return []any{k.instance}
}

// fixedKeeper owns a caller-supplied value from the moment it is registered.
type fixedKeeper struct {
	value any
}

func (k *fixedKeeper) construct(_ *resolution) (any, error) { return k.value, nil }

func (k *fixedKeeper) produced() []any { return []any{k.value} }

func (l Lifecycle) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Lifecycle) UnmarshalText(text []byte) error {
	switch string(text) {
	case "transient":
		*l = Transient
	case "singleton":
		*l = Singleton
	default:
		return fmt.Errorf("container: unknown lifecycle %q", text)
	}
	return nil
}
