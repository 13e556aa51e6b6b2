package digits

import (
	"context"
	"os"
	"time"
)

// fileWatcher polls a path until it exists and its contents are accepted.
// Callers remove any stale copy before starting the producer.
type fileWatcher struct {
	path     string
	interval time.Duration
}

func newFileWatcher(path string, interval time.Duration) *fileWatcher {
	return &fileWatcher{path: path, interval: interval}
}

// present reports whether the file exists.
func (w *fileWatcher) present() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// wait blocks until check returns true for a present file or ctx is done.
// check runs on every tick while the file exists; returning false keeps
// polling.
func (w *fileWatcher) wait(ctx context.Context, check func() bool) error {
	if w.present() && check() {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if w.present() && check() {
				return nil
			}
		}
	}
}
