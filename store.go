//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// Store places model files under a root directory, one subdirectory per
// Category.
//
// A Store does not serialize requests: concurrent requests for the same
// file race on the temporary file and the last rename wins. Requests for
// different files are independent.
type Store struct {
	root   string
	config Config
}

// NewStore returns a Store rooted at root using the default configuration
// (see SetDefaultConfig).
func NewStore(root string) *Store {
	return NewStoreWithConfig(root, GetDefaultConfig())
}

// NewStoreWithConfig returns a Store rooted at root that performs the
// downloads with the given configuration.
func NewStoreWithConfig(root string, config Config) *Store {
	return &Store{root: root, config: config}
}

// Root returns the root directory of the store.
func (s *Store) Root() string {
	return s.root
}

// Path returns the location of fileName in the category directory.
// Nothing is created.
func (s *Store) Path(category Category, fileName string) string {
	return filepath.Join(s.root, category.String(), fileName)
}

// Dir returns the directory of the category, creating it (and its parents)
// if it does not exist yet.
func (s *Store) Dir(category Category) (string, error) {
	if !category.Valid() {
		return "", errors.NotValidf("category %d", int(category))
	}
	dir := filepath.Join(s.root, category.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &DirectoryCreationError{Dir: dir, Err: err}
	}
	return dir, nil
}

// Entry describes a file in the store as found on disk.
type Entry struct {
	Path   string
	Exists bool
	Size   int64
}

// Lookup reports whether a valid copy of fileName, at least minSize bytes
// long, is present in the category directory. The returned Entry describes
// what was found even when it is not valid. It never downloads.
func (s *Store) Lookup(category Category, fileName string, minSize int64) (Entry, bool, error) {
	if !category.Valid() {
		return Entry{}, false, errors.NotValidf("category %d", int(category))
	}
	if err := validateFileName(fileName); err != nil {
		return Entry{}, false, err
	}
	entry, err := stat(s.Path(category, fileName))
	if err != nil {
		return entry, false, errors.Trace(err)
	}
	return entry, entry.Exists && entry.Size >= minSize, nil
}

// ResolveOrFetch returns the path of the requested file, downloading it
// first if it is missing or smaller than req.MinSize. See
// ResolveOrFetchWithContext.
func (s *Store) ResolveOrFetch(req Request) (string, error) {
	return s.ResolveOrFetchWithContext(context.Background(), req)
}

// ResolveOrFetchWithContext returns the path of the requested file.
//
// If the file already exists with at least req.MinSize bytes its path is
// returned right away, without any network access. Otherwise the file is
// downloaded with Transfer, replacing the invalid copy if any. The call
// blocks until the file is available or the download failed.
func (s *Store) ResolveOrFetchWithContext(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", errors.Trace(err)
	}
	dir, err := s.Dir(req.Category)
	if err != nil {
		return "", errors.Trace(err)
	}
	target := filepath.Join(dir, req.FileName)

	entry, err := stat(target)
	if err != nil {
		return "", errors.Trace(err)
	}
	if entry.Exists && entry.Size >= req.MinSize {
		logger.Debugf("model already present: %s", target)
		return target, nil
	}

	logger.Infof("downloading %s to %s", req.URL, target)
	return Transfer(ctx, target, req.URL, req.MinSize, req.Progress, s.config)
}

// Result is the outcome of an asynchronous request.
type Result struct {
	Path string
	Err  error
}

// FetchAsync runs ResolveOrFetchWithContext in a new goroutine. The
// returned channel receives exactly one Result and is then closed.
// Progress updates are delivered on that goroutine.
func (s *Store) FetchAsync(ctx context.Context, req Request) <-chan Result {
	res := make(chan Result, 1)
	go func() {
		defer close(res)
		path, err := s.ResolveOrFetchWithContext(ctx, req)
		res <- Result{Path: path, Err: err}
	}()
	return res
}

// present reports whether path is a regular file of at least minSize bytes.
// stat describes the regular file at path. Anything else counts as absent.
func stat(path string) (Entry, error) {
	entry := Entry{Path: path}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return entry, nil
	}
	if err != nil {
		return entry, err
	}
	if info.Mode().IsRegular() {
		entry.Exists = true
		entry.Size = info.Size()
	}
	return entry, nil
}
