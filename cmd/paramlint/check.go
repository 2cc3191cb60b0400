package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/panbanda/paramlint/internal/cache"
	"github.com/panbanda/paramlint/internal/output"
	"github.com/panbanda/paramlint/internal/progress"
	"github.com/panbanda/paramlint/internal/scanner"
	"github.com/panbanda/paramlint/internal/vcs"
	"github.com/panbanda/paramlint/pkg/analyzer/unusedparam"
	"github.com/panbanda/paramlint/pkg/config"
	"github.com/urfave/cli/v2"
)

// ruleFlags are shared by check and watch.
func ruleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "check-catch",
			Usage: "Also report unused catch clause parameters",
		},
		&cli.StringFlag{
			Name:  "ignore-pattern",
			Usage: "Regular expression of parameter names never reported",
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check Java files for unused parameters",
		ArgsUsage: "[path...]",
		Flags: append(ruleFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only check files changed since this git revision",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "fail",
				Usage: "Exit with status 1 when unused parameters are found",
			},
		),
		Action: runCheckCmd,
	}
}

// applyRuleFlags overrides config values with command line flags.
func applyRuleFlags(c *cli.Context, cfg *config.Config) (*regexp.Regexp, error) {
	if c.Bool("check-catch") {
		cfg.Check.IgnoreCatchParameters = false
	}
	if c.IsSet("ignore-pattern") {
		cfg.Check.IgnorePattern = c.String("ignore-pattern")
	}
	re, err := cfg.IgnorePattern()
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	return re, nil
}

// newAnalyzer builds an analyzer from cfg. Extra options are applied last.
func newAnalyzer(cfg *config.Config, ignore *regexp.Regexp, opts ...unusedparam.Option) *unusedparam.Analyzer {
	base := []unusedparam.Option{
		unusedparam.WithConfig(unusedparam.Config{IgnoreCatchParameters: cfg.Check.IgnoreCatchParameters}),
		unusedparam.WithIgnorePattern(ignore),
		unusedparam.WithWorkers(cfg.Workers),
		unusedparam.WithMaxFileSize(cfg.MaxFileSize),
		unusedparam.WithLogger(slog.Default()),
	}
	return unusedparam.New(append(base, opts...)...)
}

// changedSince narrows files to those changed since rev in the repository
// containing path.
func changedSince(files []string, path, rev string) ([]string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		path = filepath.Dir(path)
	}
	changed, err := vcs.ChangedFiles(vcs.DefaultOpener(), path, rev)
	if err != nil {
		return nil, err
	}
	return vcs.Filter(files, changed), nil
}

func runCheckCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ignore, err := applyRuleFlags(c, cfg)
	if err != nil {
		return err
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}

	spinner := progress.NewSpinner("Scanning", progress.WithWriter(c.App.ErrWriter))
	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("failed to scan: %w", err)
	}

	if rev := c.String("since"); rev != "" {
		files, err = changedSince(files, paths[0], rev)
		if err != nil {
			spinner.FinishError(err)
			return err
		}
		slog.Debug("filtered by revision", "since", rev, "files", len(files))
	}

	if len(files) == 0 {
		spinner.FinishSkipped("no Java source files found")
		return nil
	}
	spinner.FinishSuccess()

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled && !c.Bool("no-cache"))
	if err != nil {
		slog.Warn("cache disabled", "dir", cfg.Cache.Dir, "error", err)
		store = nil
	}

	tracker := progress.NewTracker("Checking", len(files), progress.WithWriter(c.App.ErrWriter))
	a := newAnalyzer(cfg, ignore,
		unusedparam.WithCache(store),
		unusedparam.WithProgress(tracker.Report),
	)
	defer a.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysis, err := a.Analyze(ctx, files)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.UnusedParameters(analysis)); err != nil {
		return err
	}

	if n := analysis.Summary.TotalViolations; n > 0 && c.Bool("fail") {
		return cli.Exit(fmt.Sprintf("%d unused parameters found", n), 1)
	}
	return nil
}

// newFormatter writes to --output or, without it, to the app's writer.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := output.ParseFormat(cfg.Output.Format)
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, c.App.Writer, cfg.Output.Color), nil
}
