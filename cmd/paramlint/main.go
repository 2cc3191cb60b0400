package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/paramlint/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:           "paramlint",
		Usage:          "Report unused parameters in Java code",
		Version:        version,
		Writer:         stdout,
		ErrWriter:      stderr,
		DefaultCommand: "check",
		Description: `paramlint reports method, constructor and catch clause parameters
that are declared but never referenced.

Parameters of abstract and interface methods are never reported. Catch
clause parameters are reported only with --check-catch.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PARAMLINT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			setupLogging(c.App.ErrWriter, c.Bool("verbose"))
			return nil
		},
		// Exit codes are handled by main.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			checkCmd(),
			watchCmd(),
			mcpCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := err.Error(); msg != "" {
				color.New(color.FgRed).Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger on w.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads --config or the first config file found in the working
// directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}

	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if result.Source != "" {
		slog.Debug("loaded config", "path", result.Source)
	}
	return result.Config, nil
}
