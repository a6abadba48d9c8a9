package transmogrify

import (
	"reflect"
	"sync"

	"github.com/ahl/transmogrify/quote"
)

type interfaceEntry struct {
	iface reflect.Type
	fn    func(any) quote.Fragment
}

// registry holds the rules generated code installs from init functions.
var registry = struct {
	sync.RWMutex

	values     map[reflect.Type]func(any) quote.Fragment
	interfaces []interfaceEntry
	types      map[reflect.Type]quote.Fragment
}{
	values: make(map[reflect.Type]func(any) quote.Fragment),
	types:  make(map[reflect.Type]quote.Fragment),
}

// Register installs fn as the rule for values of type T. When T is an
// interface type the rule applies to every value implementing it that has no
// rule of its own; interface rules are tried in registration order.
// Registering a second rule for the same concrete type replaces the first.
func Register[T any](fn func(T) quote.Fragment) {
	t := reflect.TypeFor[T]()
	wrapped := func(v any) quote.Fragment {
		tv, ok := v.(T)
		if !ok {
			return quote.Errorf("transmogrify: %T is not %s", v, t)
		}

		return fn(tv)
	}

	registry.Lock()
	defer registry.Unlock()

	if t.Kind() != reflect.Interface {
		registry.values[t] = wrapped
		return
	}

	for i, e := range registry.interfaces {
		if e.iface == t {
			registry.interfaces[i].fn = wrapped
			return
		}
	}

	registry.interfaces = append(registry.interfaces, interfaceEntry{iface: t, fn: wrapped})
}

// RegisterType installs the destination type expression of T, used wherever
// T appears in a type (slice elements, map keys, pointer targets).
func RegisterType[T any](f quote.Fragment) {
	registry.Lock()
	defer registry.Unlock()

	registry.types[reflect.TypeFor[T]()] = f
}

func valueRule(t reflect.Type) (func(any) quote.Fragment, bool) {
	registry.RLock()
	defer registry.RUnlock()

	fn, ok := registry.values[t]

	return fn, ok
}

func interfaceRule(t reflect.Type) (func(any) quote.Fragment, bool) {
	registry.RLock()
	defer registry.RUnlock()

	for _, e := range registry.interfaces {
		if t.Implements(e.iface) {
			return e.fn, true
		}
	}

	return nil, false
}

func typeRule(t reflect.Type) (quote.Fragment, bool) {
	registry.RLock()
	defer registry.RUnlock()

	f, ok := registry.types[t]

	return f, ok
}
