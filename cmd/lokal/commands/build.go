package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lokal/internal/app"
	"go.trai.ch/lokal/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Process assets and render every page once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			production, _ := cmd.Flags().GetBool("production")
			clean, _ := cmd.Flags().GetBool("clean")
			strict, _ := cmd.Flags().GetBool("strict")

			result, err := c.app.Build(cmd.Context(), app.BuildOptions{
				Dir:        dir,
				Production: production,
				Clean:      clean,
			})
			if err != nil {
				return err
			}
			if strict && result.Errors() > 0 {
				return domain.ErrBuildFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolP("production", "p", false, "Build into the production output with minification and fingerprints")
	cmd.Flags().Bool("clean", false, "Remove the output directory first and ignore the asset cache")
	cmd.Flags().Bool("strict", false, "Exit with an error when any asset or page failed")
	return cmd
}
