package cli

import (
	"github.com/spf13/cobra"

	"github.com/ahl/transmogrify/internal/derive"
)

func newDeriveCommand(a *app) *cobra.Command {
	var (
		types  []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "derive [packages]",
		Short: "Generate transmogrify methods for marked types",
		Long: `Derive loads the given packages (default ".") and writes one file per
package holding the methods of every type marked //transmogrify:derive,
plus the types named with --type.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := derive.Options{Types: a.cfg.Derive.Types, Output: a.cfg.Derive.Output}
			if cmd.Flags().Changed("type") {
				opts.Types = types
			}

			if cmd.Flags().Changed("output") {
				opts.Output = output
			}

			graph, err := a.loadGraph(args)
			if err != nil {
				return err
			}

			files, diags := a.deriveFiles(graph, opts)

			if err := a.write(cmd.OutOrStdout(), files); err != nil {
				return err
			}

			return report(cmd.ErrOrStderr(), &diags, formatText)
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "also derive the named types (comma separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "name of the generated file in each package")

	return cmd
}
