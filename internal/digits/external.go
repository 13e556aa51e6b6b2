package digits

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 100 * time.Millisecond
)

// ExternalRecognizer exchanges files with a recognizer process: cells are
// written to CellDir, Command is run, and ResultsPath is polled until it
// holds 81 digits or Timeout expires.
type ExternalRecognizer struct {
	Command      string
	Args         []string
	CellDir      string
	ResultsPath  string
	Timeout      time.Duration
	PollInterval time.Duration
	Verbose      bool
}

// NewExternalRecognizer returns a recognizer with default timing.
func NewExternalRecognizer(command string, args []string, cellDir, resultsPath string) *ExternalRecognizer {
	return &ExternalRecognizer{
		Command:      command,
		Args:         args,
		CellDir:      cellDir,
		ResultsPath:  resultsPath,
		Timeout:      defaultTimeout,
		PollInterval: defaultPollInterval,
	}
}

// Recognize implements Recognizer.
func (e *ExternalRecognizer) Recognize(ctx context.Context, cells []Cell) (Grid, error) {
	if len(cells) != CellCount {
		return Grid{}, fmt.Errorf("expected %d cells, got %d", CellCount, len(cells))
	}
	if err := SaveCells(e.CellDir, cells); err != nil {
		return Grid{}, err
	}
	if err := os.Remove(e.ResultsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Grid{}, fmt.Errorf("failed to clear stale results: %w", err)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := e.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	watcher := newFileWatcher(e.ResultsPath, interval)

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if e.Verbose {
			log.Printf("Recognizer: %s failed: %v\n%s", e.Command, err, out)
		}
		return Grid{}, fmt.Errorf("%w: %s: %v", ErrExternalToolUnavailable, e.Command, err)
	}

	var grid Grid
	var lastErr error
	err := watcher.wait(ctx, func() bool {
		// The tool may still be writing; keep polling on a partial file.
		grid, lastErr = LoadResults(e.ResultsPath)
		return lastErr == nil
	})
	if err != nil {
		if lastErr != nil {
			return Grid{}, fmt.Errorf("%w: no valid results in %v: %v", ErrExternalToolUnavailable, timeout, lastErr)
		}
		return Grid{}, fmt.Errorf("%w: no results in %v", ErrExternalToolUnavailable, timeout)
	}
	return grid, nil
}
