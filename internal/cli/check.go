package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahl/transmogrify/internal/derive"
)

func newCheckCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check [packages]",
		Short: "Report diagnostics and stale output without writing",
		Long: `Check runs derive and rewrite over the given packages (default ".") and
their skeleton files, prints every diagnostic and warns about generated files
that differ from what is on disk. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.loadGraph(args)
			if err != nil {
				return err
			}

			files, diags := a.deriveFiles(graph, derive.Options{
				Types:  a.cfg.Derive.Types,
				Output: a.cfg.Derive.Output,
			})

			paths, err := a.packageSkeletons(graph)
			if err != nil {
				return err
			}

			rewritten, rd, err := a.rewriteFiles(paths)
			if err != nil {
				return err
			}

			diags.Merge(rd)

			generated, err := a.generator().Generate(append(files, rewritten...))
			if err != nil {
				return err
			}

			seen := make(map[string]bool, len(generated))
			for _, f := range generated {
				if seen[f.Filename] {
					return fmt.Errorf("%s is generated by both derive and rewrite; set derive.output", f.Filename)
				}
				seen[f.Filename] = true
			}

			stale(generated, &diags)

			return report(cmd.OutOrStdout(), &diags, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "diagnostic format: text or yaml")

	return cmd
}
