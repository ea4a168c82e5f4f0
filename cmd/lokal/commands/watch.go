package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lokal/internal/app"
)

// DefaultAddr is the default listen address of the development server.
const DefaultAddr = "localhost:4321"

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild on change and serve the output with live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			production, _ := cmd.Flags().GetBool("production")
			addr, _ := cmd.Flags().GetString("addr")
			noServe, _ := cmd.Flags().GetBool("no-serve")
			cleanOnExit, _ := cmd.Flags().GetBool("clean-on-exit")

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Dir:         dir,
				Production:  production,
				Addr:        addr,
				NoServe:     noServe,
				CleanOnExit: cleanOnExit,
			})
		},
	}
	cmd.Flags().BoolP("production", "p", false, "Watch the production output instead of the development output")
	cmd.Flags().StringP("addr", "a", DefaultAddr, "Listen address of the development server")
	cmd.Flags().Bool("no-serve", false, "Rebuild on change without serving the output")
	cmd.Flags().Bool("clean-on-exit", false, "Remove the development output directory when watching stops")
	return cmd
}
