// Package progress draws terminal progress bars for per-file loops.
package progress

import (
	"github.com/pterm/pterm"
)

// Tracker advances a progress display by one step per file.
type Tracker interface {
	Increment()
	Stop()
}

// Reporter starts trackers and prints a closing line.
type Reporter interface {
	Start(title string, total int) Tracker
	Success(msg string)
}

type barFactory func(title string, total int) (*pterm.ProgressbarPrinter, error)

var defaultBarFactory barFactory = func(title string, total int) (*pterm.ProgressbarPrinter, error) {
	return pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithRemoveWhenDone(false).
		Start()
}

// Terminal renders progress with pterm.
type Terminal struct {
	newBar   barFactory
	disabled bool
}

// Option customizes a Terminal.
type Option func(*Terminal)

// WithOutput enables or disables terminal output.
func WithOutput(enabled bool) Option {
	return func(t *Terminal) {
		t.disabled = !enabled
	}
}

func NewTerminal(opts ...Option) *Terminal {
	pterm.Success.Prefix = pterm.Prefix{
		Text:  "✓",
		Style: pterm.NewStyle(pterm.FgGreen),
	}
	t := &Terminal{newBar: defaultBarFactory}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins a bar with total steps. A failed or disabled bar degrades to
// a no-op tracker.
func (t *Terminal) Start(title string, total int) Tracker {
	if t.disabled || total <= 0 {
		return Nop{}
	}
	bar, err := t.newBar(title, total)
	if err != nil || bar == nil {
		return Nop{}
	}
	return &pbar{bar: bar}
}

func (t *Terminal) Success(msg string) {
	if t.disabled {
		return
	}
	pterm.Success.Println(msg)
}

type pbar struct {
	bar *pterm.ProgressbarPrinter
}

func (b *pbar) Increment() {
	b.bar.Increment()
}

func (b *pbar) Stop() {
	_, _ = b.bar.Stop()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Increment() {}

func (Nop) Stop() {}

// NopReporter never prints.
type NopReporter struct{}

func (NopReporter) Start(string, int) Tracker {
	return Nop{}
}

func (NopReporter) Success(string) {}
