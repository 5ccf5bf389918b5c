// Package watcher watches a drop directory with fsnotify and reports files once they have
// stopped changing, so they can be uploaded.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher reports settled files under a root directory.
type Watcher struct {
	root       string
	extensions []string
	recursive  bool
	onReady    func(path string)
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	pending  map[string]*time.Timer
	reported map[string]fingerprint
	done     chan struct{}
	stopOnce sync.Once
}

// fingerprint identifies a file version so a write that does not change it is not reported twice.
type fingerprint struct {
	size    int64
	modTime time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must be quiet before it is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New returns a watcher for root. onReady is called once per settled file version whose
// extension is in extensions (empty means all). It may be called from several goroutines.
func New(root string, extensions []string, recursive bool, onReady func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		root:       filepath.Clean(root),
		extensions: extensions,
		recursive:  recursive,
		onReady:    onReady,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		reported:   make(map[string]fingerprint),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Start begins watching, creating root if needed. It runs until ctx is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.addTree(fsw, w.root); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw
	w.logger.Debug("watcher starting", zap.String("root", w.root), zap.Strings("extensions", w.extensions), zap.Bool("recursive", w.recursive))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		return fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && ignored(path) {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !inDir(w.root, path) || ignored(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if w.recursive {
				w.handleNewDirectory(fsw, path)
			}
			return
		}
		if matchExtension(path, w.extensions) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
		w.mu.Lock()
		delete(w.reported, path)
		w.mu.Unlock()
	}
}

// handleNewDirectory watches a directory that appeared after Start and reports the files it
// already holds, since their create events may have fired before the watch was added.
func (w *Watcher) handleNewDirectory(fsw *fsnotify.Watcher, dir string) {
	if err := w.addTree(fsw, dir); err != nil {
		w.logger.Debug("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
	}
	w.scan(dir, w.schedule)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.report(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) report(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	fp := fingerprint{size: info.Size(), modTime: info.ModTime()}
	w.mu.Lock()
	if prev, ok := w.reported[path]; ok && prev == fp {
		w.mu.Unlock()
		return
	}
	w.reported[path] = fp
	w.mu.Unlock()

	w.logger.Debug("watcher file ready", zap.String("path", path), zap.Int64("size", fp.size))
	if w.onReady != nil {
		w.onReady(path)
	}
}

func (w *Watcher) scan(dir string, found func(path string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && (!w.recursive || ignored(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !ignored(path) && matchExtension(path, w.extensions) {
			found(path)
		}
		return nil
	})
}

// SyncExistingFiles reports the matching files already present under root. Call it after Start
// to upload files dropped while the watcher was not running.
func (w *Watcher) SyncExistingFiles() {
	w.logger.Debug("watcher syncing existing files", zap.String("root", w.root))
	w.scan(w.root, w.report)
}

// Stop stops the watcher and drops pending reports.
func (w *Watcher) Stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	fsw := w.fsw
	w.mu.Unlock()
	w.stopOnce.Do(func() {
		close(w.done)
		if fsw != nil {
			_ = fsw.Close()
		}
	})
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// ignored reports hidden files and the partial files editors and browsers write while saving.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".part", ".crdownload", ".tmp", ".swp":
		return true
	}
	return false
}
