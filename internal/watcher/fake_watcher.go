// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"context"
	"sync"

	"github.com/golang/glog"
)

// FakeWatcher implements an in-memory Watcher whose events are injected by
// tests.
type FakeWatcher struct {
	watchesMu sync.RWMutex
	watches   map[string][]Processor
	isClosed  bool
}

// NewFakeWatcher returns a fake Watcher for use in tests.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{watches: make(map[string][]Processor)}
}

// Observe adds p to the processors of name.
func (w *FakeWatcher) Observe(name string, p Processor) error {
	w.watchesMu.Lock()
	defer w.watchesMu.Unlock()
	for _, q := range w.watches[name] {
		if q == p {
			return nil
		}
	}
	w.watches[name] = append(w.watches[name], p)
	return nil
}

// Unobserve removes p from the processors of name.
func (w *FakeWatcher) Unobserve(name string, p Processor) error {
	w.watchesMu.Lock()
	defer w.watchesMu.Unlock()
	ps := w.watches[name]
	for i, q := range ps {
		if q == p {
			ps = append(ps[:i], ps[i+1:]...)
			break
		}
	}
	if len(ps) == 0 {
		delete(w.watches, name)
	} else {
		w.watches[name] = ps
	}
	return nil
}

// Close closes down the FakeWatcher.
func (w *FakeWatcher) Close() error {
	w.watchesMu.Lock()
	w.isClosed = true
	w.watchesMu.Unlock()
	return nil
}

// IsClosed reports whether Close has been called.
func (w *FakeWatcher) IsClosed() bool {
	w.watchesMu.RLock()
	defer w.watchesMu.RUnlock()
	return w.isClosed
}

func (w *FakeWatcher) inject(op OpType, name string) {
	w.watchesMu.RLock()
	ps := append([]Processor(nil), w.watches[name]...)
	w.watchesMu.RUnlock()
	if len(ps) == 0 {
		glog.Warningf("can't send %s: not watching %s", op, name)
		return
	}
	for _, p := range ps {
		p.ProcessFileEvent(context.Background(), Event{op, name})
	}
}

// InjectCreate lets a test inject a fake creation event.
func (w *FakeWatcher) InjectCreate(name string) { w.inject(Create, name) }

// InjectUpdate lets a test inject a fake update event.
func (w *FakeWatcher) InjectUpdate(name string) { w.inject(Update, name) }

// InjectDelete lets a test inject a fake deletion event.
func (w *FakeWatcher) InjectDelete(name string) { w.inject(Delete, name) }

// Poll does nothing in the fake watcher; events are injected.
func (w *FakeWatcher) Poll() {
}
