package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/panbanda/paramlint/internal/output"
	"github.com/panbanda/paramlint/internal/scanner"
	"github.com/panbanda/paramlint/pkg/analyzer/unusedparam"
	"github.com/panbanda/paramlint/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-check changed files",
		ArgsUsage: "[path]",
		Flags: append(ruleFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "How long a file must stay unchanged before it is checked",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ignore, err := applyRuleFlags(c, cfg)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"),
		watch.WithOutput(c.App.Writer),
		watch.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	a := newAnalyzer(cfg, ignore)
	defer a.Close()

	// Callbacks run one at a time, so the scanner's lazily loaded
	// gitignore matcher needs no locking.
	sc := scanner.NewScanner(cfg)
	formatter := output.NewWriterFormatter(output.FormatText, c.App.Writer, cfg.Output.Color)
	watcher.SetCallback(func(changed string) {
		if ok, err := sc.ScanFile(changed); err != nil || !ok {
			return
		}
		reportFile(formatter, a, changed)
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watcher.Start(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(c.App.Writer, "\nStopping watch...")
		return nil
	}
	return err
}

// reportFile checks one file and prints a line per violation.
func reportFile(f *output.Formatter, a *unusedparam.Analyzer, path string) {
	result, err := a.AnalyzeFile(path)
	if err != nil {
		f.Error("%v", err)
		return
	}
	if len(result.Violations) == 0 {
		f.Success("No unused parameters")
		return
	}
	for _, v := range result.Violations {
		line := output.Line(v)
		if f.Colored() {
			line = output.KindColor(string(v.Kind), line)
		}
		fmt.Fprintln(f.Writer(), line)
	}
	f.Warning("%d unused parameters", len(result.Violations))
}
