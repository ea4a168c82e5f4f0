// Package commands implements the CLI commands for lokal.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.trai.ch/lokal/internal/app"
	"go.trai.ch/lokal/internal/build"
)

// CLI represents the command line interface for lokal.
type CLI struct {
	app       Application
	configure func(Settings)
	rootCmd   *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) (*app.BuildResult, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// Settings are the global flags applied before any command runs.
type Settings struct {
	// JSON switches the logger to structured JSON output.
	JSON bool
	// Verbose logs the duration of every traced pass.
	Verbose bool
}

// New creates a new CLI instance with the given app. configure, when set,
// receives the global settings before a command runs.
func New(a Application, configure func(Settings)) *CLI {
	rootCmd := &cobra.Command{
		Use:           "lokal",
		Short:         "An incremental static site builder for multi-locale sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json", !stderrIsTerminal(), "Write logs as JSON (default when stderr is not a terminal)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log the duration of every build pass")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Directory to search for lokal.yaml (default: current directory)")

	c := &CLI{
		app:       a,
		configure: configure,
		rootCmd:   rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.configure == nil {
			return
		}
		jsonLogs, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		c.configure(Settings{JSON: jsonLogs, Verbose: verbose})
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// projectDir returns the --dir flag, falling back to the working directory.
func projectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
