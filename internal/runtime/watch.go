// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package runtime

import (
	"context"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/watcher"
	"github.com/pkg/errors"
)

// Watch compiles the source file at path now and again every time w reports
// a change to it.  The result of the most recent compilation is available
// from LastCompile.
func (r *Runtime) Watch(ctx context.Context, w watcher.Watcher, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to look up absolute path of %q", path)
	}
	if err := w.Observe(absPath, r); err != nil {
		return err
	}
	r.compileWatched(ctx, absPath)
	return nil
}

// Unwatch stops recompiling the source file at path.
func (r *Runtime) Unwatch(w watcher.Watcher, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to look up absolute path of %q", path)
	}
	r.programErrorMu.Lock()
	delete(r.programErrors, absPath)
	r.programErrorMu.Unlock()
	return w.Unobserve(absPath, r)
}

// ProcessFileEvent implements the watcher.Processor interface.
func (r *Runtime) ProcessFileEvent(ctx context.Context, event watcher.Event) {
	switch event.Op {
	case watcher.Create, watcher.Update:
		r.compileWatched(ctx, event.Pathname)
	case watcher.Delete:
		glog.Infof("Source %s was removed; keeping its last object file", event.Pathname)
	}
}

func (r *Runtime) compileWatched(ctx context.Context, path string) {
	objPath, _, err := r.CompileFile(ctx, path)
	if err != nil {
		glog.Infof("Compile errors for %s:\n%s", path, err)
	} else {
		glog.Infof("Wrote %s", objPath)
	}
	r.programErrorMu.Lock()
	r.programErrors[path] = err
	r.programErrorMu.Unlock()
}

// LastCompile reports whether the watched source file at path has been
// compiled, and the error of its most recent compilation.
func (r *Runtime) LastCompile(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	r.programErrorMu.RLock()
	defer r.programErrorMu.RUnlock()
	err, ok := r.programErrors[absPath]
	return ok, err
}
