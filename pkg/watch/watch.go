// Package watch signals changes to a single file so the viewer can reload
// it. Raw filesystem events are coalesced: a burst of writes produces at
// least one notification, not one per write.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatch marks failures to set up or keep a file watch. Callers treat it
// as non-fatal: report once and keep showing the last good frame.
var ErrWatch = errors.New("watch")

// quietWindow is how long the watcher waits after the last raw event before
// notifying, so an editor that writes in several syscalls triggers one
// reload instead of a flurry.
const quietWindow = 100 * time.Millisecond

// DefaultPollInterval is used by NewPolling when no interval is given.
const DefaultPollInterval = 500 * time.Millisecond

// Watcher emits on Changes() whenever the watched file is written, created,
// renamed or removed. Notifications are at-least-once: consumers reload
// unconditionally on receive and never assume exactly one write happened.
type Watcher struct {
	path    string
	changes chan struct{}
	errs    chan error

	closeOnce sync.Once
	done      chan struct{}

	fw   *fsnotify.Watcher
	poll time.Duration
}

// New watches path via the OS notification facility. The watch is placed on
// the parent directory and filtered by name, because editors that save via
// rename would silently detach a watch on the file itself.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWatch, path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrWatch, filepath.Dir(abs), err)
	}
	w := newWatcher(abs)
	w.fw = fw
	go w.runNotify()
	return w, nil
}

// NewPolling watches path by comparing its size and mtime on a ticker. It is
// the fallback for filesystems where inotify does not deliver (network
// mounts, some containers). interval <= 0 uses DefaultPollInterval.
func NewPolling(path string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w := newWatcher(path)
	w.poll = interval
	go w.runPoll()
	return w
}

func newWatcher(path string) *Watcher {
	return &Watcher{
		path:    path,
		changes: make(chan struct{}, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
}

// Changes returns the notification channel. It is closed when the watcher
// shuts down.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errs returns watch-level failures. At most one is retained; the consumer
// reports the first and carries on without live reload.
func (w *Watcher) Errs() <-chan error { return w.errs }

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

func (w *Watcher) runNotify() {
	defer close(w.changes)
	defer w.fw.Close()

	// Created stopped; matching raw events re-arm it so the notification
	// fires one quiet window after the last write.
	timer := time.NewTimer(quietWindow)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				w.reportErr(fmt.Errorf("%w: event stream closed", ErrWatch))
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(quietWindow)
		case err, ok := <-w.fw.Errors:
			if !ok {
				w.reportErr(fmt.Errorf("%w: error stream closed", ErrWatch))
				return
			}
			w.reportErr(fmt.Errorf("%w: %w", ErrWatch, err))
		case <-timer.C:
			w.notify()
		}
	}
}

func (w *Watcher) runPoll() {
	defer close(w.changes)
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	last := statSignature(w.path)
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := statSignature(w.path)
			if cur != last {
				last = cur
				w.notify()
			}
		}
	}
}

type statSig struct {
	size, mtime int64
	missing     bool
}

// statSignature folds a missing file into a distinct signature so both
// deletion and re-creation count as changes.
func statSignature(path string) statSig {
	fi, err := os.Stat(path)
	if err != nil {
		return statSig{missing: true}
	}
	return statSig{size: fi.Size(), mtime: fi.ModTime().UnixNano()}
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default: // one is already pending; it covers this change too
	}
}

func (w *Watcher) reportErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}
