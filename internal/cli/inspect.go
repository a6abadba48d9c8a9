package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ahl/transmogrify/internal/analyze"
)

// typeView is what inspect --dump shows of an analyzed type.
type typeView struct {
	ID         analyze.TypeID
	Kind       string
	Shape      string
	Exported   bool
	Directives []string
	Reason     string
	Span       string
}

func newTypeView(s *analyze.TypeStringer, t *analyze.TypeInfo) typeView {
	v := typeView{
		ID:       t.ID,
		Kind:     t.Kind.String(),
		Shape:    s.Shape(t),
		Exported: t.Exported,
		Reason:   t.Reason,
		Span:     t.Span.String(),
	}

	for _, d := range t.Directives {
		v.Directives = append(v.Directives, d.Text)
	}

	return v
}

func newInspectCommand(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "inspect [packages]",
		Short: "Show the shapes analysis finds in packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.loadGraph(args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := analyze.NewTypeStringer()
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

			for _, p := range slices.Sorted(maps.Keys(graph.Packages)) {
				pkg := graph.Packages[p]
				color.New(color.FgCyan, color.Bold).Fprintf(w, "package %s\n", pkg.Path)

				for _, id := range pkg.Types {
					t := graph.GetType(id)
					if t == nil {
						continue
					}

					if dump {
						cfg.Fdump(w, newTypeView(s, t))
						continue
					}

					fmt.Fprintf(w, "  %s\n", s.Shape(t))
				}
			}

			return report(cmd.ErrOrStderr(), &graph.Diagnostics, formatText)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump every analyzed type in full")

	return cmd
}
