package main

import (
	"bytes"
	"context"
	"log/slog"
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

func TestCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"search", "lookup", "batch", "import", "places", "serve"} {
		cmd := findCommand(t, app, name)
		assert.NotNil(t, cmd.Action, name)
	}

	t.Run("search requires a name", func(t *testing.T) {
		app := newApp()
		err := app.Run([]string{"wheretobuy", "--env-file", "", "search", "--producer", "Acme"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("lookup requires an id", func(t *testing.T) {
		app := newApp()
		err := app.Run([]string{"wheretobuy", "--env-file", "", "lookup"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id")
	})

	t.Run("config flag reads the environment", func(t *testing.T) {
		var flag *cli.StringFlag
		for _, f := range newApp().Flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "config" {
				flag = sf
			}
		}
		require.NotNil(t, flag)
		assert.Equal(t, "wheretobuy.yaml", flag.Value)
		assert.Equal(t, []string{"WHERETOBUY_CONFIG"}, flag.EnvVars)
	})

	t.Run("report interval defaults to 10", func(t *testing.T) {
		cmd := findCommand(t, newApp(), "batch")
		for _, f := range cmd.Flags {
			if inf, ok := f.(*cli.IntFlag); ok && inf.Name == "report-interval" {
				assert.Equal(t, 10, inf.Value)
				return
			}
		}
		t.Fatal("report-interval flag not found")
	})
}

func TestImportAndPlaces(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WHERETOBUY_DB", filepath.Join(dir, "db"))

	catalogPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte(
		"id,product_name,producer,varietal,vintage,category\n"+
			"7,Old Oak Reserve,Acme,Shiraz,2015,Red Wine\n"+
			"8,,Acme,,,\n"), 0o644))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		app.ErrWriter = &out
		base := []string{"wheretobuy", "--env-file", "", "--config", filepath.Join(dir, "absent.yaml")}
		err := app.Run(append(base, args...))
		return out.String(), err
	}

	out, err := run("import", "--file", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 2 rows")
	assert.Contains(t, out, "skipped row 3")

	out, err = run("places", "--id", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Old Oak Reserve Acme Shiraz 2015")
	assert.Contains(t, out, "no places stored")

	_, err = run("places", "--id", "99")
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	newTestApp := func(action cli.ActionFunc) *cli.App {
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
			Action: action,
		}
	}
	noop := func(*cli.Context) error { return nil }

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newTestApp(noop).Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newTestApp(noop).Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newTestApp(func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}).Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseLevel("verbose")
	assert.Error(t, err)
}
