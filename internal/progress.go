package internal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// UIManager handles user interface concerns (progress and status messages)
type UIManager interface {
	NewSpinner(description string) ProgressBar
	Printf(format string, args ...any)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	quiet bool
}

// NewUIManager creates a UI manager; quiet suppresses all output
func NewUIManager(quiet bool) UIManager {
	return &StandardUIManager{quiet: quiet}
}

// NewSpinner starts an animated spinner on stderr
func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(-1)}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	s := &VisibleProgressBar{bar: bar, done: make(chan struct{})}
	go s.spin()
	return s
}

// Printf prints a status message to stderr unless quiet
func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// StageReporter adapts a spinner to the pipeline's stage callback
func StageReporter(bar ProgressBar) func(Stage) {
	return func(stage Stage) {
		bar.Describe(string(stage) + "...")
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
	once sync.Once
}

func (v *VisibleProgressBar) spin() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			_ = v.bar.Add(1)
		}
	}
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	v.once.Do(func() {
		close(v.done)
		_ = v.bar.Finish()
	})
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}
