// Package diagnostic provides span-attributed errors and warnings for the
// transmogrify generators.
//
// Key capabilities:
//   - Non-fatal diagnostics collected per declaration (Diagnostics)
//   - Fatal errors that stop one declaration or function (Error)
//   - Rendering as colored text, YAML reports and combined errors
package diagnostic
