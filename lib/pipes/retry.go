// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipes

import (
	"errors"
	"io"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/stdinforcer/lib/clock"
)

// DefaultBackoff is used when RetryWriter.Backoff is zero.
const DefaultBackoff = 100 * time.Microsecond

// RetryWriter writes every byte it is given to W. A write that fails
// transiently (EAGAIN, EINTR) or makes no progress is retried after
// sleeping Backoff on Clock. Any other error is returned together with
// the number of bytes already accepted.
type RetryWriter struct {
	W       io.Writer
	Clock   clock.Clock
	Backoff time.Duration

	retries int
}

// Write implements io.Writer.
func (w *RetryWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.W.Write(p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil && n > 0:
			continue
		case err == nil, IsTransient(err):
			w.retries++
			w.sleep()
		default:
			return written, err
		}
	}
	return written, nil
}

// Retries returns how many times a write has been retried.
func (w *RetryWriter) Retries() int { return w.retries }

func (w *RetryWriter) sleep() {
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	if w.Clock == nil {
		w.Clock = clock.Real()
	}
	w.Clock.Sleep(backoff)
}

// IsTransient reports whether err is a write failure that may succeed
// if retried unchanged.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}

// IsBrokenPipe reports whether err means the reading side of a pipe
// has gone away.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, unix.EPIPE)
}
