// Package transmogrify turns Go values into Go source that rebuilds them.
//
// Values computed at go:generate time are written into another package as
// literal expressions rather than as serialized data. Types opt in by
// implementing Transmogrifier, usually through code generated by the
// transmogrify command:
//
//	//transmogrify:derive prefix=example.com/api
//	type Simple struct {
//		Foo int
//	}
//
// Of is the entry point generated code recurses through. It covers pointers,
// slices, arrays, maps, sets, basic values, time.Time and time.Duration, and
// defers to Register'd rules and Transmogrifier methods for everything else.
package transmogrify
