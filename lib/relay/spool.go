// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"io"
	"sync"
)

// spool buffers one child stream between its drainer and the emitter.
// The drainer Writes and then calls finish exactly once; the emitter
// calls WriteTo. Bytes already handed to the emitter are released.
type spool struct {
	mu      sync.Mutex
	ready   *sync.Cond
	pending []byte
	done    bool
	err     error
}

func newSpool() *spool {
	s := &spool{}
	s.ready = sync.NewCond(&s.mu)
	return s
}

// Write appends a copy of p. It never fails.
func (s *spool) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	s.pending = append(s.pending, p...)
	s.mu.Unlock()
	s.ready.Broadcast()
	return len(p), nil
}

// finish marks the end of the stream. err is the drainer's failure, or
// nil at a clean end of stream.
func (s *spool) finish(err error) {
	s.mu.Lock()
	s.done = true
	s.err = err
	s.mu.Unlock()
	s.ready.Broadcast()
}

// WriteTo streams the spool into w until the drainer finishes. It
// returns w's error, or the drainer's error once everything buffered
// before it has been written.
func (s *spool) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.done {
			s.ready.Wait()
		}
		chunk := s.pending
		s.pending = nil
		done, err := s.done, s.err
		s.mu.Unlock()

		if len(chunk) == 0 && done {
			return total, err
		}
		n, writeErr := w.Write(chunk)
		total += int64(n)
		if writeErr != nil {
			return total, writeErr
		}
	}
}
