//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"fmt"
)

// DirectoryCreationError is returned when the content directory of a
// category cannot be created.
type DirectoryCreationError struct {
	Dir string
	Err error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("creating directory %s: %s", e.Dir, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when the server answers with a status other
// than 200 OK, after following redirects.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bad http response from %s: %s", e.URL, e.Status)
}

// SizeValidationError is returned when the downloaded file is smaller
// than the requested minimum size.
type SizeValidationError struct {
	Size    int64
	MinSize int64
}

func (e *SizeValidationError) Error() string {
	return fmt.Sprintf("downloaded file too small: %d bytes (minimum %d)", e.Size, e.MinSize)
}

// ReplaceError is returned when a previous file at the target path
// cannot be removed to make room for the new download.
type ReplaceError struct {
	Path string
	Err  error
}

func (e *ReplaceError) Error() string {
	return fmt.Sprintf("removing previous file %s: %s", e.Path, e.Err)
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}

// RenameError is returned when the temporary file cannot be moved onto
// the target path.
type RenameError struct {
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("moving %s to %s: %s", e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}
