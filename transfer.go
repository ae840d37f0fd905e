//
// Copyright 2018-2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("modelfetch")

// Replaced in tests to simulate filesystem failures.
var (
	removeFile = os.Remove
	renameFile = os.Rename
)

// State is the stage reached by a transfer.
type State int

const (
	Connecting State = iota
	Streaming
	Validating
	Finalizing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Validating:
		return "validating"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transfer downloads sourceURL to target unconditionally.
//
// The body is written to target+TempSuffix, overwriting any leftover of a
// previous attempt. Once the body is complete and at least minSize bytes
// long, any previous file at target is removed and the temporary file is
// renamed onto target. On failure the temporary file is removed and the
// error is returned; nothing is retried or resumed.
//
// If the server announces the body length, progress (if not nil) receives
// the completion percentage each time it changes.
func Transfer(ctx context.Context, target, sourceURL string, minSize int64, progress ProgressFunc, config Config) (string, error) {
	t := &transfer{
		url:    sourceURL,
		target: target,
		tmp:    target + TempSuffix,
		config: config.withDefaults(),
	}
	if err := t.run(ctx, minSize, progress); err != nil {
		logger.Debugf("download of %s failed while %s: %v", t.url, t.state, err)
		t.enter(Failed)
		return "", errors.Annotatef(err, "downloading %s", sourceURL)
	}
	t.enter(Done)
	logger.Infof("download complete: %s", target)
	return target, nil
}

type transfer struct {
	url    string
	target string
	tmp    string
	config Config
	state  State
}

func (t *transfer) enter(s State) {
	logger.Tracef("%s: %s -> %s", t.target, t.state, s)
	t.state = s
}

func (t *transfer) run(ctx context.Context, minSize int64, progress ProgressFunc) (err error) {
	ctx, wd := newWatchdog(ctx, t.config.Clock, t.config.ReadTimeout)
	defer wd.Cancel()

	client, release := t.config.client()
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return errors.Annotate(err, "setting up HTTP request")
	}
	for k, v := range t.config.ExtraHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", t.config.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return t.interrupted(wd, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{URL: t.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if t.config.AcceptFunc != nil {
		if err := t.config.AcceptFunc(resp); err != nil {
			return errors.Trace(err)
		}
	}

	t.enter(Streaming)
	out, err := os.OpenFile(t.tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotatef(err, "opening %s for writing", t.tmp)
	}
	defer func() {
		if err != nil {
			t.removeTemp()
		}
	}()

	err = t.copy(wd, out, resp.Body, newProgressReporter(progress, resp.ContentLength))
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Annotatef(cerr, "closing %s", t.tmp)
	}
	if err != nil {
		return err
	}

	t.enter(Validating)
	info, err := os.Stat(t.tmp)
	if err != nil {
		return errors.Trace(err)
	}
	if info.Size() < minSize {
		return &SizeValidationError{Size: info.Size(), MinSize: minSize}
	}

	t.enter(Finalizing)
	return t.finalize()
}

func (t *transfer) copy(wd *watchdog, out io.Writer, in io.Reader, progress *progressReporter) error {
	buff := make([]byte, t.config.BufferSize)
	for {
		n, err := in.Read(buff)
		if n > 0 {
			wd.Kick()
			if _, werr := out.Write(buff[:n]); werr != nil {
				return errors.Annotatef(werr, "writing %s", t.tmp)
			}
			progress.Add(n)
		}
		if err == io.EOF {
			logger.Tracef("%s: received %d bytes", t.url, progress.Completed())
			return nil
		}
		if err != nil {
			return t.interrupted(wd, err)
		}
	}
}

// interrupted reports the reason of a network failure, preferring the
// watchdog or context cancellation cause over the transport error.
func (t *transfer) interrupted(wd *watchdog, err error) error {
	if cause := wd.Err(); cause != nil {
		if cause == os.ErrDeadlineExceeded {
			return errors.Annotatef(cause, "no data received for %s", t.config.ReadTimeout)
		}
		return errors.Trace(cause)
	}
	return errors.Trace(err)
}

func (t *transfer) finalize() error {
	if _, err := os.Lstat(t.target); err == nil {
		if err := removeFile(t.target); err != nil {
			return &ReplaceError{Path: t.target, Err: err}
		}
	} else if !os.IsNotExist(err) {
		return &ReplaceError{Path: t.target, Err: err}
	}
	if err := renameFile(t.tmp, t.target); err != nil {
		return &RenameError{From: t.tmp, To: t.target, Err: err}
	}
	return nil
}

func (t *transfer) removeTemp() {
	if err := removeFile(t.tmp); err != nil && !os.IsNotExist(err) {
		logger.Warningf("cannot remove temporary file %s: %v", t.tmp, err)
	}
}
