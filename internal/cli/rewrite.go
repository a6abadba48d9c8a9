package cli

import (
	"github.com/spf13/cobra"
)

func newRewriteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite [files or directories]",
		Short: "Expand skeleton files into their generated companions",
		Long: `Rewrite expands every //transmogrify:template function of a skeleton file
and writes the result next to it as <file>_gen.go. Directories (default ".")
are searched for files built only with the skeleton tag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.skeletons(args)
			if err != nil {
				return err
			}

			files, diags, err := a.rewriteFiles(paths)
			if err != nil {
				return err
			}

			if err := a.write(cmd.OutOrStdout(), files); err != nil {
				return err
			}

			return report(cmd.ErrOrStderr(), &diags, formatText)
		},
	}
}
