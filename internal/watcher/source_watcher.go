// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"context"
	"expvar"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	errorCount = expvar.NewInt("source_watcher_errors_total")
	eventCount = expvar.NewMap("source_watcher_events_total")
)

type watch struct {
	ps []Processor
	fi os.FileInfo // nil while the file does not exist
}

// SourceWatcher implements a Watcher for source files on a real filesystem.
// Changes are found with fsnotify on the directory holding each file, by
// polling at a fixed interval, or both.  Events from both sources may
// duplicate each other.
type SourceWatcher struct {
	watcher    *fsnotify.Watcher
	pollTicker *time.Ticker

	watchedMu sync.Mutex // protects `watched' and `dirs'
	watched   map[string]*watch
	dirs      map[string]int // fsnotify watch count per directory

	stopTicks  chan struct{}
	ticksDone  chan struct{}
	eventsDone chan struct{}

	closeOnce sync.Once
}

// NewSourceWatcher returns a new SourceWatcher.  With a zero pollInterval
// and fsnotify disabled, changes are only found by calls to Poll.
func NewSourceWatcher(pollInterval time.Duration, enableFsnotify bool) (*SourceWatcher, error) {
	if pollInterval < 0 {
		return nil, errors.Errorf("invalid poll interval %s", pollInterval)
	}
	w := &SourceWatcher{
		watched: make(map[string]*watch),
		dirs:    make(map[string]int),
	}
	if enableFsnotify {
		f, err := fsnotify.NewWatcher()
		if err != nil {
			glog.Warningf("fsnotify unavailable, falling back to polling: %s", err)
			if pollInterval == 0 {
				pollInterval = 250 * time.Millisecond
			}
		} else {
			w.watcher = f
			w.eventsDone = make(chan struct{})
			go w.runEvents()
		}
	}
	if pollInterval > 0 {
		w.pollTicker = time.NewTicker(pollInterval)
		w.stopTicks = make(chan struct{})
		w.ticksDone = make(chan struct{})
		go w.runTicks()
	}
	return w, nil
}

func (w *SourceWatcher) send(ps []Processor, e Event) {
	eventCount.Add(e.Op.String(), 1)
	for _, p := range ps {
		p.ProcessFileEvent(context.Background(), e)
	}
}

func (w *SourceWatcher) runTicks() {
	defer close(w.ticksDone)
	for {
		select {
		case <-w.pollTicker.C:
			w.Poll()
		case <-w.stopTicks:
			w.pollTicker.Stop()
			return
		}
	}
}

// Poll checks every watched file for changes since the last poll and sends
// the resulting events.
func (w *SourceWatcher) Poll() {
	type pending struct {
		ps []Processor
		e  Event
	}
	var events []pending
	w.watchedMu.Lock()
	for name, watched := range w.watched {
		if e, ok := pollLocked(name, watched); ok {
			events = append(events, pending{append([]Processor(nil), watched.ps...), e})
		}
	}
	w.watchedMu.Unlock()
	for _, p := range events {
		glog.V(2).Infof("poll found %s of %s", p.e.Op, p.e.Pathname)
		w.send(p.ps, p.e)
	}
}

// pollLocked stats a watched file and reports the event since the previous
// stat, if any.
func pollLocked(name string, watched *watch) (Event, bool) {
	fi, err := os.Stat(name)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.V(1).Info(err)
			return Event{}, false
		}
		if watched.fi == nil {
			return Event{}, false
		}
		watched.fi = nil
		return Event{Delete, name}, true
	}
	prev := watched.fi
	watched.fi = fi
	switch {
	case prev == nil:
		return Event{Create, name}, true
	case fi.ModTime().After(prev.ModTime()), fi.Size() != prev.Size():
		return Event{Update, name}, true
	}
	return Event{}, false
}

// runEvents assumes that w.watcher is not nil.
func (w *SourceWatcher) runEvents() {
	defer close(w.eventsDone)

	go func() {
		for err := range w.watcher.Errors {
			errorCount.Add(1)
			glog.Errorf("fsnotify error: %s", err)
		}
	}()

	for e := range w.watcher.Events {
		glog.V(2).Infof("watcher event %v", e)
		var op OpType
		switch {
		case e.Op&fsnotify.Create == fsnotify.Create:
			op = Create
		case e.Op&fsnotify.Write == fsnotify.Write,
			e.Op&fsnotify.Chmod == fsnotify.Chmod:
			op = Update
		case e.Op&fsnotify.Remove == fsnotify.Remove,
			e.Op&fsnotify.Rename == fsnotify.Rename:
			op = Delete
		default:
			continue
		}
		w.watchedMu.Lock()
		watched, ok := w.watched[e.Name]
		var ps []Processor
		if ok {
			ps = append(ps, watched.ps...)
			if op == Delete {
				watched.fi = nil
			} else if fi, err := os.Stat(e.Name); err == nil {
				watched.fi = fi
			}
		}
		w.watchedMu.Unlock()
		if !ok {
			continue
		}
		w.send(ps, Event{op, e.Name})
	}
	glog.Info("Shutting down source watcher.")
}

// Close shuts down the SourceWatcher.  It is safe to call this more than once.
func (w *SourceWatcher) Close() (err error) {
	w.closeOnce.Do(func() {
		if w.watcher != nil {
			err = w.watcher.Close()
			<-w.eventsDone
		}
		if w.pollTicker != nil {
			close(w.stopTicks)
			<-w.ticksDone
		}
	})
	return
}

// Observe starts sending the events for the file at path to processor.
func (w *SourceWatcher) Observe(path string, processor Processor) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to look up absolute path of %q", path)
	}
	w.watchedMu.Lock()
	defer w.watchedMu.Unlock()
	if watched, ok := w.watched[absPath]; ok {
		for _, p := range watched.ps {
			if p == processor {
				return nil
			}
		}
		watched.ps = append(watched.ps, processor)
		return nil
	}
	if err := w.addDirLocked(filepath.Dir(absPath)); err != nil {
		return err
	}
	watched := &watch{ps: []Processor{processor}}
	if fi, err := os.Stat(absPath); err == nil {
		watched.fi = fi
	}
	w.watched[absPath] = watched
	glog.V(1).Infof("Watching %s", absPath)
	return nil
}

func (w *SourceWatcher) addDirLocked(dir string) error {
	if w.watcher == nil {
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to create a new watch on %q", dir)
		}
	}
	w.dirs[dir]++
	return nil
}

// Unobserve stops sending events for path to processor.  The file is no
// longer watched once its last processor is removed.
func (w *SourceWatcher) Unobserve(path string, processor Processor) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to look up absolute path of %q", path)
	}
	w.watchedMu.Lock()
	defer w.watchedMu.Unlock()
	watched, ok := w.watched[absPath]
	if !ok {
		return nil
	}
	for i, p := range watched.ps {
		if p == processor {
			watched.ps = append(watched.ps[:i], watched.ps[i+1:]...)
			break
		}
	}
	if len(watched.ps) > 0 {
		return nil
	}
	delete(w.watched, absPath)
	if w.watcher == nil {
		return nil
	}
	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	return w.watcher.Remove(dir)
}

// IsWatching reports whether the file at path is observed.
func (w *SourceWatcher) IsWatching(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.watchedMu.Lock()
	defer w.watchedMu.Unlock()
	_, ok := w.watched[absPath]
	return ok
}
