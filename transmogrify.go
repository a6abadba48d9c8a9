package transmogrify

import (
	"reflect"

	"github.com/ahl/transmogrify/quote"
)

// Transmogrifier is implemented by values that can describe themselves as Go
// source. The fragment must evaluate to an equivalent value, usually of a type
// declared under a different import path.
type Transmogrifier interface {
	Transmogrify() quote.Fragment
}

// TypeTransmogrifier is implemented by types that can spell their own
// destination type. It is called on the zero value.
type TypeTransmogrifier interface {
	TransmogrifyType() quote.Fragment
}

var (
	transmogrifierType     = reflect.TypeFor[Transmogrifier]()
	typeTransmogrifierType = reflect.TypeFor[TypeTransmogrifier]()
)

// Of returns a fragment that reconstructs v.
//
// Rules are tried in order: a rule registered for the exact type of v, the
// Transmogrifier method of v, rules registered for an interface v implements,
// and finally the built-in rules for pointers, slices, arrays, maps, basic
// values, time.Time and time.Duration. Values no rule covers produce a
// fragment carrying an error.
func Of(v any) quote.Fragment {
	if v == nil {
		return quote.Ident("nil")
	}

	return of(reflect.ValueOf(v))
}

func of(rv reflect.Value) quote.Fragment {
	switch rv.Kind() {
	case reflect.Invalid:
		return quote.Ident("nil")
	case reflect.Interface:
		if rv.IsNil() {
			return quote.Ident("nil")
		}

		return boxed(rv.Elem())
	case reflect.Pointer, reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return quote.Ident("nil")
		}
	}

	t := rv.Type()

	// A pointer to a value that has a rule of its own is built by the pointer
	// rule around the element's fragment.
	if t.Kind() == reflect.Pointer && hasRule(t.Elem()) {
		return leaf(rv)
	}

	if fn, ok := valueRule(t); ok {
		if !rv.CanInterface() {
			return quote.Errorf("transmogrify: %s: value is not accessible", t)
		}

		return fn(rv.Interface())
	}

	if tr, ok := asTransmogrifier(rv); ok {
		return tr.Transmogrify()
	}

	if fn, ok := interfaceRule(t); ok && rv.CanInterface() {
		return fn(rv.Interface())
	}

	return leaf(rv)
}

func hasRule(t reflect.Type) bool {
	if _, ok := valueRule(t); ok {
		return true
	}

	if _, ok := interfaceRule(t); ok {
		return true
	}

	return t.Implements(transmogrifierType)
}

func asTransmogrifier(rv reflect.Value) (Transmogrifier, bool) {
	if !rv.CanInterface() {
		return nil, false
	}

	t := rv.Type()

	if t.Implements(transmogrifierType) {
		return rv.Interface().(Transmogrifier), true
	}

	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(transmogrifierType) {
		p := reflect.New(t)
		p.Elem().Set(rv)

		return p.Interface().(Transmogrifier), true
	}

	return nil, false
}
