// Package progress renders file-processing progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
	mu    sync.Mutex
	max   int
}

// Option configures a Tracker.
type Option func(*options)

type options struct {
	out io.Writer
}

// WithWriter draws the bar on w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

func buildOptions(opts []Option) options {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(label string, opts ...Option) *Tracker {
	o := buildOptions(opts)
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: o.out, max: -1}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	o := buildOptions(opts)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: o.out, max: total}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Report moves the bar to current of total and shows the file just
// processed. Its signature matches analyzer.ProgressFunc.
func (t *Tracker) Report(current, total int, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total > 0 && total != t.max {
		t.max = total
		t.bar.ChangeMax(total)
	}
	if path != "" {
		t.bar.Describe(fmt.Sprintf("%s %s", t.label, filepath.Base(path)))
	}
	_ = t.bar.Set(current)
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, reason)
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
