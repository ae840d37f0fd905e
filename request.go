//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// Request describes a model file to make available locally.
type Request struct {
	// Category selects the content directory.
	Category Category
	// URL the file is downloaded from when missing. Redirects are followed.
	URL string
	// FileName is the name of the file inside the category directory.
	FileName string
	// MinSize is the size in bytes below which a file, either already on
	// disk or freshly downloaded, is considered invalid.
	MinSize int64
	// Progress optionally receives the download completion percentage.
	Progress ProgressFunc
}

// Validate checks that the request can be placed in a store.
// The URL is not checked here; an invalid one makes the download fail.
func (r Request) Validate() error {
	if !r.Category.Valid() {
		return errors.NotValidf("category %d", int(r.Category))
	}
	if err := validateFileName(r.FileName); err != nil {
		return err
	}
	if r.MinSize < 0 {
		return errors.NotValidf("negative minimum size %d", r.MinSize)
	}
	return nil
}

func validateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errors.NotValidf("file name %q", name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return errors.NotValidf("file name %q containing a path separator", name)
	}
	return nil
}
