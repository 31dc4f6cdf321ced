package analyze

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ompisal63/smart-pothole-system/api"
)

const (
	// resultChannelBuffer is the size of the verdict channel.
	resultChannelBuffer = 16

	// defaultSettleDelay is how long a file must be quiet before it is
	// analyzed, so partially written images are not uploaded.
	defaultSettleDelay = 500 * time.Millisecond
)

// Result is the outcome of analyzing one watched image.
type Result struct {
	Path    string
	Verdict api.Verdict
	Err     error
}

// Watcher observes a directory for new road images and runs each one
// through the analysis task once writes have settled.
type Watcher struct {
	dir        string
	task       *Task
	settle     time.Duration
	logger     *slog.Logger
	extensions map[string]bool

	pendingMu sync.Mutex
	pending   map[string]*time.Timer

	results chan Result

	droppedResults atomic.Int64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettleDelay overrides how long writes must be quiet before an
// image is analyzed.
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a directory watcher feeding the analysis task.
func NewWatcher(dir string, task *Task, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:    dir,
		task:   task,
		settle: defaultSettleDelay,
		logger: slog.Default(),
		extensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
		},
		pending: make(map[string]*time.Timer),
		results: make(chan Result, resultChannelBuffer),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Results returns the channel of analysis outcomes.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Run watches the directory until ctx is cancelled. Each create or
// write event for an image file resets that file's settle timer; when
// the timer fires the image is analyzed and the outcome delivered on
// Results.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	w.logger.Info("Watching for road images", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", "error", err)
		}
	}
}

// schedule resets the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()

		if ctx.Err() != nil {
			return
		}

		verdict, err := w.task.Run(ctx, path)
		select {
		case w.results <- Result{Path: path, Verdict: verdict, Err: err}:
		default:
			dropped := w.droppedResults.Add(1)
			w.logger.Warn("Result channel full, dropping verdict",
				"image", path,
				"dropped_total", dropped)
		}
	})
}

func (w *Watcher) stopPending() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
