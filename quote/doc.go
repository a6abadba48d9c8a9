// Package quote builds Go syntax trees from source templates.
//
// A template is ordinary Go source in which `$name` placeholders stand for
// fragments supplied through a Bind:
//
//	quote.Expr("$T{Name: $name}", quote.Bind{"T": typ, "name": name})
//
// Key properties:
//   - Placeholders are found by the Go scanner, so `$` inside literals is text
//   - Bound fragments are inserted as trees, never re-parsed or re-expanded
//   - List fragments splice into element, argument and statement lists
//   - Fragments record the imports they refer to (see Qual) and carry errors
//     to every fragment they are composed into
package quote
