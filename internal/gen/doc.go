// Package gen assembles generated Go files.
//
// Producers add items to a File: declarations built with package quote,
// source text copied from an input file, and compile-error items for error
// diagnostics. The file frame is a text/template; the result is pruned of
// unused imports and formatted with golang.org/x/tools/imports.
//
// The helpers in code.go build the code generated methods are made of:
//   - transmogrify.Of calls
//   - quote.Qual calls for destination paths
//   - quote.Expr calls with quote.Bind literals
package gen
