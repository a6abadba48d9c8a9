package transmogrify

import (
	"reflect"

	"github.com/ahl/transmogrify/quote"
)

// Field returns the fragment of the i-th positional element of v. For a
// struct that is the i-th field; for any other defined type the only element,
// 0, is the underlying value.
func Field(v any, i int) quote.Fragment {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch {
	case rv.Kind() == reflect.Struct:
		if i < 0 || i >= rv.NumField() {
			return quote.Errorf("transmogrify: %s has no element %d", rv.Type(), i)
		}

		return of(rv.Field(i))
	case i == 0:
		return Of(Underlying(rv.Interface()))
	default:
		return quote.Errorf("transmogrify: %T has no element %d", v, i)
	}
}

// At attributes a failure of f to the field bound at pos, a file:line:col
// position in the template the calling code was generated from. Fragments
// without an error are returned unchanged.
func At(pos, field string, f quote.Fragment) quote.Fragment {
	if err := f.Err(); err != nil {
		return quote.Errorf("%s: field %s: %w", pos, field, err)
	}

	return f
}

// Positional builds a value of type typ from its positional elements: a
// composite literal for structs, a conversion for every other type.
// The shape of v decides which.
func Positional(typ quote.Fragment, v any, elems ...quote.Fragment) quote.Fragment {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Struct {
		return quote.Expr("$T{$elems}", quote.Bind{"T": typ, "elems": quote.List(elems...)})
	}

	if len(elems) != 1 {
		return quote.Errorf("transmogrify: conversion to %s takes exactly one element, got %d", typ, len(elems))
	}

	return quote.Expr("$T($e)", quote.Bind{"T": typ, "e": elems[0]})
}

// Underlying converts v to its underlying type when that type can be named
// without v's type: basic kinds, pointers, slices, arrays and maps. Other
// values are returned unchanged.
func Underlying(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type().Name() == "" {
		return v
	}

	t := rv.Type()

	var u reflect.Type

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		u = basicTypes[t.Kind()]
	case reflect.Pointer:
		u = reflect.PointerTo(t.Elem())
	case reflect.Slice:
		u = reflect.SliceOf(t.Elem())
	case reflect.Array:
		u = reflect.ArrayOf(t.Len(), t.Elem())
	case reflect.Map:
		u = reflect.MapOf(t.Key(), t.Elem())
	default:
		return v
	}

	return rv.Convert(u).Interface()
}

var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:       reflect.TypeFor[bool](),
	reflect.String:     reflect.TypeFor[string](),
	reflect.Int:        reflect.TypeFor[int](),
	reflect.Int8:       reflect.TypeFor[int8](),
	reflect.Int16:      reflect.TypeFor[int16](),
	reflect.Int32:      reflect.TypeFor[int32](),
	reflect.Int64:      reflect.TypeFor[int64](),
	reflect.Uint:       reflect.TypeFor[uint](),
	reflect.Uint8:      reflect.TypeFor[uint8](),
	reflect.Uint16:     reflect.TypeFor[uint16](),
	reflect.Uint32:     reflect.TypeFor[uint32](),
	reflect.Uint64:     reflect.TypeFor[uint64](),
	reflect.Uintptr:    reflect.TypeFor[uintptr](),
	reflect.Float32:    reflect.TypeFor[float32](),
	reflect.Float64:    reflect.TypeFor[float64](),
	reflect.Complex64:  reflect.TypeFor[complex64](),
	reflect.Complex128: reflect.TypeFor[complex128](),
}

// Is reports whether v holds a value of type T.
func Is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}
