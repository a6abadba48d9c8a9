package rewrite

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Tag is the default build tag that marks skeleton files. Generated files
// carry its negation, so exactly one of the two is compiled.
const Tag = "transmogrify"

// GeneratedSuffix ends the name of every generated companion file.
const GeneratedSuffix = "_gen.go"

// OutputPath returns the path of the file generated from a skeleton.
func OutputPath(skeleton string) string {
	return strings.TrimSuffix(skeleton, ".go") + GeneratedSuffix
}

// GeneratedConstraint returns the build constraint of the file generated
// from a skeleton: the skeleton's constraint with tag negated. A constraint
// that does not mention tag is extended with its negation.
func GeneratedConstraint(file *ast.File, tag string) (string, error) {
	expr, err := buildConstraint(file)
	if err != nil {
		return "", err
	}

	not := &constraint.NotExpr{X: &constraint.TagExpr{Tag: tag}}

	if expr == nil {
		return not.String(), nil
	}

	inverted, found := invert(expr, tag)
	if !found {
		inverted = &constraint.AndExpr{X: expr, Y: not}
	}

	return inverted.String(), nil
}

func buildConstraint(file *ast.File) (constraint.Expr, error) {
	for _, cg := range file.Comments {
		if cg.Pos() > file.Package {
			break
		}

		for _, c := range cg.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}

			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return nil, fmt.Errorf("invalid build constraint %q: %w", c.Text, err)
			}

			return expr, nil
		}
	}

	return nil, nil
}

// invert negates every occurrence of tag in e.
func invert(e constraint.Expr, tag string) (constraint.Expr, bool) {
	switch e := e.(type) {
	case *constraint.TagExpr:
		if e.Tag == tag {
			return &constraint.NotExpr{X: e}, true
		}
	case *constraint.NotExpr:
		if t, ok := e.X.(*constraint.TagExpr); ok && t.Tag == tag {
			return t, true
		}

		x, found := invert(e.X, tag)

		return &constraint.NotExpr{X: x}, found
	case *constraint.AndExpr:
		x, fx := invert(e.X, tag)
		y, fy := invert(e.Y, tag)

		return &constraint.AndExpr{X: x, Y: y}, fx || fy
	case *constraint.OrExpr:
		x, fx := invert(e.X, tag)
		y, fy := invert(e.Y, tag)

		return &constraint.OrExpr{X: x, Y: y}, fx || fy
	}

	return e, false
}

// maxTags bounds the constraints IsSkeleton evaluates exhaustively.
const maxTags = 12

// IsSkeleton reports whether a file is only built with tag: some set of tags
// including it selects the file, and no set without it does.
func IsSkeleton(file *ast.File, tag string) bool {
	expr, err := buildConstraint(file)
	if err != nil || expr == nil {
		return false
	}

	var others []string

	expr.Eval(func(name string) bool {
		if name != tag && !slices.Contains(others, name) {
			others = append(others, name)
		}

		return false
	})

	if len(others) > maxTags {
		return false
	}

	buildable := false

	for mask := 0; mask < 1<<len(others); mask++ {
		set := func(with bool) func(string) bool {
			return func(name string) bool {
				if name == tag {
					return with
				}

				return mask&(1<<slices.Index(others, name)) != 0
			}
		}

		if expr.Eval(set(false)) {
			return false
		}

		buildable = buildable || expr.Eval(set(true))
	}

	return buildable
}

// Discover returns the skeleton files of a directory, sorted by name.
func Discover(dir, tag string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var out []string

	fset := token.NewFileSet()

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, GeneratedSuffix) || strings.HasSuffix(name, "_test.go") {
			continue
		}

		path := filepath.Join(dir, name)

		file, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly|parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		if IsSkeleton(file, tag) {
			out = append(out, path)
		}
	}

	slices.Sort(out)

	return out, nil
}

// PackagePath returns the import path of the package in dir. Skeleton files
// are included, so a directory holding only skeletons still resolves.
func PackagePath(dir, tag string) (string, error) {
	cfg := &packages.Config{
		Mode:       packages.NeedName,
		Dir:        dir,
		BuildFlags: []string{"-tags=" + tag},
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return "", fmt.Errorf("load package: %w", err)
	}

	if len(pkgs) != 1 || pkgs[0].PkgPath == "" {
		return "", fmt.Errorf("no package in %s", dir)
	}

	return pkgs[0].PkgPath, nil
}
