package transmogrify

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ahl/transmogrify/quote"
)

// TypeFor returns the destination type expression of T.
func TypeFor[T any]() quote.Fragment {
	return TypeOf(reflect.TypeFor[T]())
}

// TypeOf returns the destination type expression of t. Registered types and
// types implementing TypeTransmogrifier spell themselves; other defined types
// are qualified by their own package path; composite types are built from
// their element types.
func TypeOf(t reflect.Type) quote.Fragment {
	if t == nil {
		return quote.Errorf("transmogrify: nil type")
	}

	if f, ok := typeRule(t); ok {
		return f
	}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && t.Implements(typeTransmogrifierType) {
		return reflect.Zero(t).Interface().(TypeTransmogrifier).TransmogrifyType()
	}

	if t.Name() != "" {
		return namedType(t)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return quote.Expr("*$E", quote.Bind{"E": TypeOf(t.Elem())})
	case reflect.Slice:
		return quote.Expr("[]$E", quote.Bind{"E": TypeOf(t.Elem())})
	case reflect.Array:
		return quote.Expr("["+strconv.Itoa(t.Len())+"]$E", quote.Bind{"E": TypeOf(t.Elem())})
	case reflect.Map:
		return quote.Expr("map[$K]$V", quote.Bind{"K": TypeOf(t.Key()), "V": TypeOf(t.Elem())})
	case reflect.Struct:
		if t.NumField() == 0 {
			return quote.Expr("struct{}", nil)
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return quote.Ident("any")
		}
	}

	return quote.Errorf("transmogrify: no type expression for %s", t)
}

func namedType(t reflect.Type) quote.Fragment {
	name := t.Name()

	if strings.Contains(name, "[") {
		return quote.Errorf("transmogrify: no type expression for instantiated %s; register one with RegisterType", t)
	}

	if t.PkgPath() == "" {
		return quote.Ident(name)
	}

	return quote.Qual(t.PkgPath(), name)
}
