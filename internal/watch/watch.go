// Package watch reports changes to Tiled documents on disk.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/tilemap/internal/logger"
)

// DefaultExtensions are the document types watched when none are configured.
var DefaultExtensions = []string{".tmx", ".tsx", ".tx"}

// Options configures a Watcher.
type Options struct {
	Debounce   time.Duration // repeated events for one file inside this window are dropped
	Extensions []string      // case-insensitive, with leading dot
	Logger     *zap.Logger
}

// Watcher delivers the paths of changed documents on Events. Both channels
// are closed once the watcher stops.
type Watcher struct {
	Events chan string
	Errors chan error

	watcher  *fsnotify.Watcher
	exts     map[string]bool
	debounce *debouncer
	log      *zap.Logger

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New starts watching dirs. Files are matched by extension; subdirectories
// are not followed.
func New(opts Options, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("watch")
	}

	w := &Watcher{
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		watcher:  fw,
		exts:     make(map[string]bool, len(exts)),
		debounce: newDebouncer(opts.Debounce),
		log:      log,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, ext := range exts {
		w.exts[strings.ToLower(ext)] = true
	}

	log.Debug("watching", zap.Strings("dirs", dirs), zap.Strings("extensions", exts))
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Matches reports whether path has one of the watched extensions.
func (w *Watcher) Matches(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			if !w.debounce.allow(event.Name, time.Now()) {
				w.log.Debug("debounced", zap.String("path", event.Name))
				continue
			}
			w.log.Debug("changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// debouncer suppresses repeated events for one path inside a time window.
type debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, last: make(map[string]time.Time)}
}

func (d *debouncer) allow(name string, now time.Time) bool {
	if t, ok := d.last[name]; ok && now.Sub(t) < d.window {
		return false
	}
	d.last[name] = now
	return true
}
