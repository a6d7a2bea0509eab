package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gameconfig "github.com/tomz197/circus/internal/loop/config"
)

// reloadDebounce is how long the tuning file must stay quiet before it is re-read.
const reloadDebounce = 100 * time.Millisecond

// TuningSource hands out the latest tuning. Safe for concurrent use.
type TuningSource struct {
	cur atomic.Pointer[gameconfig.Tuning]
}

// NewTuningSource creates a source holding t.
func NewTuningSource(t gameconfig.Tuning) *TuningSource {
	s := &TuningSource{}
	s.Store(t)
	return s
}

// Current returns the latest tuning.
func (s *TuningSource) Current() gameconfig.Tuning {
	return *s.cur.Load()
}

// Store replaces the tuning.
func (s *TuningSource) Store(t gameconfig.Tuning) {
	s.cur.Store(&t)
}

// Watcher reloads a tuning file into a TuningSource whenever it changes.
// Invalid files are logged and ignored; the previous tuning stays active.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	source  *TuningSource
	logger  *log.Logger

	// Reloaded receives each successfully applied tuning. Sends never block.
	Reloaded chan gameconfig.Tuning

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchTuning starts watching path. The parent directory is watched so
// editors that replace the file on save are still seen.
func WatchTuning(path string, source *TuningSource, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		source:   source,
		logger:   logger,
		Reloaded: make(chan gameconfig.Tuning, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
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

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("tuning watcher error", "err", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	t, err := gameconfig.LoadTuning(w.path)
	if err != nil {
		w.logger.Warn("tuning reload rejected", "path", w.path, "err", err)
		return
	}
	w.source.Store(t)
	w.logger.Info("tuning reloaded", "path", w.path)

	select {
	case w.Reloaded <- t:
	default:
	}
}
