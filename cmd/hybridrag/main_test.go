package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"query", "ask", "mcp"} {
		cmd := findCommand(t, app, name)
		assert.NotNil(t, cmd.Action, name)

		var hasFile bool
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringSliceFlag); ok && f.Name == "file" {
				hasFile = true
				assert.Equal(t, []string{"f"}, f.Aliases)
			}
		}
		assert.True(t, hasFile, "%s accepts --file", name)
	}
}

func TestQueryCommand_Flags(t *testing.T) {
	cmd := findCommand(t, newApp(), "query")

	var topK *cli.IntFlag
	var alpha *cli.Float64Flag
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.IntFlag:
			if f.Name == "top-k" {
				topK = f
			}
		case *cli.Float64Flag:
			if f.Name == "alpha" {
				alpha = f
			}
		}
	}
	require.NotNil(t, topK)
	require.NotNil(t, alpha)
	assert.Equal(t, -1, topK.Value, "negative means use the configured value")
	assert.InDelta(t, -1.0, alpha.Value, 1e-9)
}

func TestCommands_RequireText(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"hybridrag", "query"}, "query is required"},
		{[]string{"hybridrag", "query", "   "}, "query is required"},
		{[]string{"hybridrag", "ask"}, "question is required"},
	}
	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			err := app.Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommands_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  alpha: 4\n"), 0o600))

	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"hybridrag", "--config", path, "query", "capital"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybridrag.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\ntop_k = 9\n"), 0o600))

	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.StringFlag{Name: "host"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			require.NoError(t, err)
			assert.Equal(t, 9, cfg.Search.TopK)

			aiCfg := cfg.AI.Config()
			require.NoError(t, aiCfg.Validate())
			assert.Equal(t, "http://gpu-box:8000/v1", aiCfg.EmbeddingHost)
			assert.Equal(t, "http://gpu-box:8000/v1", aiCfg.ChatHost)
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"test", "--config", path, "--host", "http://gpu-box:8000"}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t\tc", 10))
	assert.Equal(t, "abc...", preview("abcdef", 3))
	assert.Equal(t, "äöü...", preview("äöüß", 3))
}

func TestSetupLogger(t *testing.T) {
	newLoggerApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newLoggerApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "-l", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "verbose")
	})
}
