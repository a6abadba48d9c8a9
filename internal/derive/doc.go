// Package derive generates transmogrify methods for type declarations.
//
// A type opts in with a directive in its doc comment:
//
//	//transmogrify:derive prefix=example.com/api
//	type Simple struct {
//		Foo int
//	}
//
// The prefix is the import path of the destination package; the generated
// fragments name types and constants of that package. Struct, newtype and
// enumeration types get a Transmogrify and a TransmogrifyType method. Sealed
// interfaces get a Transmogrify<Name> function that is registered with the
// runtime from an init function.
//
// Every problem found while deriving a declaration is reported as a
// diagnostic at the offending construct. Fatal problems replace the output of
// that declaration with a compile-error item; the other declarations of the
// package are still generated.
package derive
