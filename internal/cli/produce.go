package cli

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/derive"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/internal/gen"
	"github.com/ahl/transmogrify/internal/logger"
	"github.com/ahl/transmogrify/internal/rewrite"
)

// Diagnostic output formats.
const (
	formatText = "text"
	formatYAML = "yaml"
)

func (a *app) loadGraph(patterns []string) (*analyze.TypeGraph, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	an := analyze.NewAnalyzer()
	an.Dir = a.dir

	graph, err := an.LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	logger.Logger.Infow("loaded packages", "patterns", patterns, "packages", len(graph.Packages))

	return graph, nil
}

// deriveFiles runs derive over every package of graph.
func (a *app) deriveFiles(graph *analyze.TypeGraph, opts derive.Options) ([]*gen.File, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	diags.Merge(graph.Diagnostics)

	files, dd := derive.NewDeriver(graph, opts).Derive()
	diags.Merge(dd)

	return files, diags
}

// skeletons expands arguments into skeleton files. Directories are searched
// for skeletons; files are taken as given.
func (a *app) skeletons(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var out []string

	for _, arg := range args {
		p := a.path(arg)

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("skeleton %s: %w", arg, err)
		}

		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		found, err := rewrite.Discover(p, a.cfg.Rewrite.Tag)
		if err != nil {
			return nil, fmt.Errorf("discover skeletons in %s: %w", arg, err)
		}

		logger.Logger.Debugw("discovered skeletons", "dir", p, "files", found)
		out = append(out, found...)
	}

	return out, nil
}

// packageSkeletons returns the skeleton files of the packages of graph.
func (a *app) packageSkeletons(graph *analyze.TypeGraph) ([]string, error) {
	dirs := make(map[string]bool)
	for _, pkg := range graph.Packages {
		if pkg.Dir != "" {
			dirs[pkg.Dir] = true
		}
	}

	var out []string

	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		found, err := rewrite.Discover(dir, a.cfg.Rewrite.Tag)
		if err != nil {
			return nil, err
		}

		out = append(out, found...)
	}

	return out, nil
}

// rewriteFiles rewrites every skeleton. The package of each directory is
// resolved once, then skeletons are rewritten concurrently. Files and
// diagnostics keep the order of paths.
func (a *app) rewriteFiles(paths []string) ([]*gen.File, diagnostic.Diagnostics, error) {
	selves := make(map[string]string)

	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := selves[dir]; ok {
			continue
		}

		self, err := rewrite.PackagePath(dir, a.cfg.Rewrite.Tag)
		if err != nil {
			return nil, diagnostic.Diagnostics{}, fmt.Errorf("%s: %w", p, err)
		}

		selves[dir] = self
	}

	files := make([]*gen.File, len(paths))
	perFile := make([]diagnostic.Diagnostics, len(paths))

	var g errgroup.Group

	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range paths {
		g.Go(func() error {
			r := rewrite.NewRewriter(rewrite.Options{SelfPackage: selves[filepath.Dir(p)], Tag: a.cfg.Rewrite.Tag})

			out, fd, err := r.RewriteFile(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}

			files[i], perFile[i] = out, fd

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, diagnostic.Diagnostics{}, err
	}

	var diags diagnostic.Diagnostics
	for _, fd := range perFile {
		diags.Merge(fd)
	}

	return files, diags, nil
}

func (a *app) generator() *gen.Generator {
	return gen.NewGenerator(gen.GeneratorConfig{DebugUnformatted: a.cfg.DebugUnformatted})
}

// write renders and writes files. Files that render are written even when
// others fail.
func (a *app) write(w io.Writer, files []*gen.File) error {
	generated, genErr := a.generator().Generate(files)

	if err := gen.WriteFiles(generated); err != nil {
		return err
	}

	for _, f := range generated {
		logger.Logger.Infow("wrote file", "file", f.Filename, "bytes", len(f.Content))
		fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), f.Filename)
	}

	return genErr
}

// stale reports generated files that differ from what is on disk.
func stale(generated []gen.GeneratedFile, diags *diagnostic.Diagnostics) {
	for _, f := range generated {
		current, err := os.ReadFile(f.Filename)
		if err == nil && bytes.Equal(current, f.Content) {
			continue
		}

		msg := fmt.Sprintf("%s is out of date", filepath.Base(f.Filename))
		if err != nil {
			msg = fmt.Sprintf("%s has not been generated", filepath.Base(f.Filename))
		}

		span := diagnostic.Span{Start: token.Position{Filename: f.Filename, Line: 1, Column: 1}}
		diags.AddWarning(diagnostic.CodeStaleOutput, msg, "", span)
	}
}

// report writes diagnostics in format and returns ErrDiagnostics when any is
// an error.
func report(w io.Writer, diags *diagnostic.Diagnostics, format string) error {
	var err error

	switch format {
	case formatYAML:
		err = diagnostic.WriteYAML(w, diags)
	case formatText:
		err = diagnostic.WriteText(w, diags)
	default:
		return fmt.Errorf("--format must be %s or %s, got: %s", formatText, formatYAML, format)
	}

	if err != nil {
		return err
	}

	if diags.HasErrors() {
		return ErrDiagnostics
	}

	return nil
}
