package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

// Default settings.
const (
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultExtensions are the file types indexed when none are configured.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".html", ".htm"}

// ErrNoDirectories is returned when Run is given nothing to watch.
var ErrNoDirectories = errors.New("no directories to watch")

// Operation is the kind of change applied for a file.
type Operation int

// Operations reported to the Processed hook.
const (
	OpIndex Operation = iota
	OpRemove
)

// String returns the string representation.
func (o Operation) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "index"
}

// Event describes a file change after it has been applied to the index.
type Event struct {
	Path      string
	Operation Operation
	Chunks    int
	Err       error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSource sets the source kind recorded for indexed files.
func WithSource(source domain.SourceKind) Option {
	return func(w *Watcher) {
		w.source = source
	}
}

// WithExtensions restricts indexing to files with these extensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = normaliseExtensions(exts)
	}
}

// WithNormaliser sets how file bytes become indexable text.
func WithNormaliser(norm driven.Normaliser) Option {
	return func(w *Watcher) {
		if norm != nil {
			w.normaliser = norm
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is processed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialScan indexes matching files already present when Run starts.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// WithProcessed registers a hook called after every applied change.
func WithProcessed(fn func(Event)) Option {
	return func(w *Watcher) {
		w.processed = fn
	}
}

// Watcher re-indexes files when they change and removes them when deleted.
type Watcher struct {
	index       driving.IndexService
	normaliser  driven.Normaliser
	source      domain.SourceKind
	extensions  []string
	debounce    time.Duration
	initialScan bool
	processed   func(Event)
}

// New creates a watcher that feeds the given index service.
func New(index driving.IndexService, opts ...Option) *Watcher {
	w := &Watcher{
		index:      index,
		normaliser: normalisers.Default(),
		source:     domain.SourceFile,
		extensions: DefaultExtensions,
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directories and their subdirectories until ctx is done.
func (w *Watcher) Run(ctx context.Context, dirs ...string) error {
	if len(dirs) == 0 {
		return ErrNoDirectories
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range dirs {
		if err := w.addTree(ctx, fw, dir); err != nil {
			return err
		}
	}

	logger.Info("Watching %d directories for %s", len(fw.WatchList()), strings.Join(w.extensions, ", "))

	pending := make(map[string]Operation)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ctx, fw, event, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
		}
	}
}

// addTree registers dir and every subdirectory, indexing existing files
// when the initial scan is enabled.
func (w *Watcher) addTree(ctx context.Context, fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			return nil
		}
		if w.initialScan && w.matches(path) {
			w.apply(ctx, path, OpIndex)
		}
		return nil
	})
}

// handleEvent records the pending operation for an event.
// It reports whether the debounce timer should be restarted.
func (w *Watcher) handleEvent(
	ctx context.Context,
	fw *fsnotify.Watcher,
	event fsnotify.Event,
	pending map[string]Operation,
) bool {
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(ctx, fw, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
			return false
		}
		if !w.matches(event.Name) {
			return false
		}
		pending[event.Name] = OpIndex

	case event.Has(fsnotify.Write):
		if !w.matches(event.Name) {
			return false
		}
		pending[event.Name] = OpIndex

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if !w.matches(event.Name) {
			return false
		}
		pending[event.Name] = OpRemove

	default:
		return false
	}
	return true
}

// flush applies and clears every pending operation.
func (w *Watcher) flush(ctx context.Context, pending map[string]Operation) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		w.apply(ctx, path, pending[path])
		delete(pending, path)
	}
}

// apply brings the index in line with a single file.
func (w *Watcher) apply(ctx context.Context, path string, op Operation) {
	event := Event{Path: path, Operation: op}

	switch op {
	case OpIndex:
		result, err := IndexFile(ctx, w.index, w.normaliser, path, w.source, domain.Metadata{})
		if errors.Is(err, fs.ErrNotExist) {
			// Removed before the debounce fired.
			event.Operation = OpRemove
			event.Chunks, event.Err = RemoveFile(ctx, w.index, path)
			break
		}
		if result != nil {
			event.Chunks = result.ChunksCreated
		}
		event.Err = err
	case OpRemove:
		event.Chunks, event.Err = RemoveFile(ctx, w.index, path)
	}

	if event.Err != nil {
		logger.Warn("Failed to %s %s: %v", event.Operation, path, event.Err)
	} else {
		logger.Info("%s %s (%d chunks)", event.Operation, path, event.Chunks)
	}

	if w.processed != nil {
		w.processed(event)
	}
}

// matches reports whether the path has a watched extension.
func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

// normaliseExtensions lowercases extensions and adds the leading dot.
func normaliseExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
