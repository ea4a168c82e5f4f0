package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lokal/cmd/lokal/commands"
	"go.trai.ch/lokal/internal/app"
	"go.trai.ch/lokal/internal/build"
	"go.trai.ch/lokal/internal/core/domain"
)

type mockApp struct {
	buildFunc func(ctx context.Context, opts app.BuildOptions) (*app.BuildResult, error)
	watchFunc func(ctx context.Context, opts app.WatchOptions) error
	cleanFunc func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) (*app.BuildResult, error) {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return &app.BuildResult{}, nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) (*app.BuildResult, error) {
				captured = opts
				return &app.BuildResult{}, nil
			},
		}

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{"build", "-C", "/site", "--production", "--clean"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.BuildOptions{Dir: "/site", Production: true, Clean: true}, captured)
	})

	t.Run("defaults to the working directory", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) (*app.BuildResult, error) {
				captured = opts
				return &app.BuildResult{}, nil
			},
		}
		dir := t.TempDir()
		t.Chdir(dir)

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{"build"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, dir, captured.Dir)
		assert.False(t, captured.Production)
	})

	t.Run("recovered errors pass unless strict", func(t *testing.T) {
		result := &app.BuildResult{Diagnostics: []domain.Diagnostic{
			{Category: domain.DiagAsset, Severity: domain.SeverityError, Err: domain.ErrAssetWriteFailed},
		}}
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) (*app.BuildResult, error) {
				return result, nil
			},
		}

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{"build", "-C", "/site"})
		require.NoError(t, cli.Execute(context.Background()))

		cli = commands.New(mock, nil)
		cli.SetArgs([]string{"build", "-C", "/site", "--strict"})
		require.ErrorIs(t, cli.Execute(context.Background()), domain.ErrBuildFailed)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) (*app.BuildResult, error) {
				return nil, errors.New("simulated error")
			},
		}

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{"build", "-C", "/site"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock, nil)
	cli.SetArgs([]string{"watch", "-C", "/site", "--no-serve"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, app.WatchOptions{Dir: "/site", Addr: commands.DefaultAddr, NoServe: true}, captured)

	cli = commands.New(mock, nil)
	cli.SetArgs([]string{"watch", "-C", "/site", "--addr", ":8080", "-p"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, app.WatchOptions{Dir: "/site", Addr: ":8080", Production: true}, captured)

	cli = commands.New(mock, nil)
	cli.SetArgs([]string{"watch", "-C", "/site", "--clean-on-exit"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, app.WatchOptions{Dir: "/site", Addr: commands.DefaultAddr, CleanOnExit: true}, captured)
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock, nil)
	cli.SetArgs([]string{"clean", "--dir", "/site"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "/site", captured.Dir)
}

func TestCommands_GlobalSettings(t *testing.T) {
	var settings []commands.Settings
	cli := commands.New(&mockApp{}, func(s commands.Settings) {
		settings = append(settings, s)
	})
	cli.SetArgs([]string{"build", "-C", "/site", "--json=true", "--verbose"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []commands.Settings{{JSON: true, Verbose: true}}, settings)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{}, nil)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "lokal version "+build.Version)
}
