// Package main is the entry point for the lokal site builder.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	"go.trai.ch/lokal/cmd/lokal/commands"
	"go.trai.ch/lokal/internal/adapters/telemetry" //nolint:depguard // Wired in cli layer
	"go.trai.ch/lokal/internal/app"
	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/lokal/internal/core/ports"
	_ "go.trai.ch/lokal/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App, configure(components.Logger))
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrBuildFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}

// configure applies the global flags to the logger and the tracer provider.
func configure(log ports.Logger) func(commands.Settings) {
	return func(s commands.Settings) {
		if l, ok := log.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(s.JSON)
		}
		if s.Verbose {
			otel.SetTracerProvider(telemetry.NewProvider(telemetry.NewLogBridge(log)))
		}
	}
}
