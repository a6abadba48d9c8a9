// Package main provides the CLI entrypoint for transmogrify.
//
// transmogrify is a Go codegen tool that:
//   - Derives methods turning values of marked types into Go source
//   - Expands //transmogrify:template skeletons into generated companions
//   - Checks packages for diagnostics and stale generated files
package main

import (
	"os"

	"github.com/ahl/transmogrify/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
