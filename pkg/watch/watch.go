// Package watch re-runs work when a file changes.
//
// [File] watches the directory containing the file rather than the file
// itself, so editors that save by writing a temporary file and renaming it
// over the original are still noticed. Bursts of events are debounced, and a
// change is only reported when the file's bytes actually differ from the
// last ones seen, so writing identical content back does not retrigger.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// DefaultDebounce is how long the file must be quiet before fn runs.
const DefaultDebounce = 200 * time.Millisecond

// Options configures [File].
type Options struct {
	Debounce time.Duration

	// Logger receives watcher errors and failures returned by fn.
	// Nil discards them.
	Logger *log.Logger
}

// Func receives the current contents of the watched file.
type Func func(ctx context.Context, data []byte) error

// File calls fn with the contents of path once immediately and again after
// every change, until ctx is done. Errors from fn are logged and watching
// continues. File returns INPUT_NOT_FOUND when path cannot be read at start.
func File(ctx context.Context, path string, fn Func, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	last, err := os.ReadFile(abs)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInputNotFound, err, "file not found: %s", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	run := func(data []byte) {
		if err := fn(ctx, data); err != nil {
			opts.Logger.Error("run failed", "path", path, "err", err)
		}
	}
	run(last)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fire = time.After(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("watcher error", "err", err)

		case <-fire:
			fire = nil
			data, err := os.ReadFile(abs)
			if err != nil {
				// Mid-save; the next event will catch up.
				opts.Logger.Debug("read after change failed", "path", path, "err", err)
				continue
			}
			if bytes.Equal(data, last) {
				continue
			}
			last = data
			opts.Logger.Debug("file changed", "path", path, "bytes", len(data))
			run(data)
		}
	}
}
