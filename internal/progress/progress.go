// Package progress reports long-running CLI operations (update downloads,
// off-site backup uploads) as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter is the interface for reporting progress.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// NewReporter returns a progress bar on stderr when it is a terminal and a
// no-op reporter otherwise, so piped output stays clean.
func NewReporter() Reporter {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return NewCLIProgress(os.Stderr)
	}
	return NewNoOpProgress()
}

// CLIProgress implements progress reporting using a progress bar.
type CLIProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a progress bar writing to w.
func NewCLIProgress(w io.Writer) *CLIProgress {
	return &CLIProgress{w: w}
}

// Start initializes the progress bar with total size and description.
// A total of -1 shows a spinner.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.w, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a progress reporter that does nothing (for background/silent operations).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(total int64, description string) {}
func (p *NoOpProgress) Update(current int64)                  {}
func (p *NoOpProgress) Finish()                               {}
func (p *NoOpProgress) Error(err error)                       {}
func (p *NoOpProgress) SetDescription(desc string)            {}

// Callback adapts r to a (transferred, total) progress callback. The bar is
// started on the first call, once the total is known.
func Callback(r Reporter, description string) func(transferred, total int64) {
	var once sync.Once
	return func(transferred, total int64) {
		once.Do(func() {
			if total <= 0 {
				total = -1
			}
			r.Start(total, description)
		})
		r.Update(transferred)
	}
}
