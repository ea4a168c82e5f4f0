package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lokal/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove both output directories, including the asset cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			return c.app.Clean(cmd.Context(), app.CleanOptions{Dir: dir})
		},
	}
}
