//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

// ProgressFunc receives the download completion percentage, in the range
// 0-100. It is called on the goroutine performing the transfer, with
// non-decreasing values and never twice in a row with the same value.
type ProgressFunc func(percent int)

// ProgressChannel returns a ProgressFunc that sends every update to ch.
// The transfer blocks while ch is full.
func ProgressChannel(ch chan<- int) ProgressFunc {
	return func(percent int) {
		ch <- percent
	}
}

// progressReporter coalesces byte counts into percentage updates.
type progressReporter struct {
	fn    ProgressFunc
	total int64
	read  int64
	last  int
}

func newProgressReporter(fn ProgressFunc, total int64) *progressReporter {
	return &progressReporter{fn: fn, total: total, last: -1}
}

// Add accounts n more bytes and notifies fn if the percentage changed.
// Nothing is reported when the total size is unknown.
func (p *progressReporter) Add(n int) {
	p.read += int64(n)
	if p.fn == nil || p.total <= 0 {
		return
	}
	percent := int(p.read * 100 / p.total)
	if percent > 100 {
		percent = 100
	}
	if percent != p.last {
		p.last = percent
		p.fn(percent)
	}
}

// Completed returns the bytes accounted so far.
func (p *progressReporter) Completed() int64 {
	return p.read
}
