// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/stdinforcer/lib/testutil"
)

type writeToResult struct {
	n   int64
	err error
}

func TestSpoolStreamsUntilFinished(t *testing.T) {
	s := newSpool()
	var sink bytes.Buffer
	done := make(chan writeToResult, 1)
	go func() {
		n, err := s.WriteTo(&sink)
		done <- writeToResult{n, err}
	}()

	s.Write([]byte("first "))
	s.Write(nil)
	s.Write([]byte("second"))
	s.finish(nil)

	result := testutil.RequireReceive(t, done, 5*time.Second, "WriteTo after finish")
	if result.err != nil || result.n != 12 {
		t.Fatalf("WriteTo = %d, %v; want 12, nil", result.n, result.err)
	}
	if sink.String() != "first second" {
		t.Errorf("sink = %q", sink.String())
	}
}

func TestSpoolBuffersBeforeReader(t *testing.T) {
	s := newSpool()
	buffer := []byte("reused")
	s.Write(buffer)
	copy(buffer, "XXXXXX")
	s.finish(nil)

	var sink bytes.Buffer
	if _, err := s.WriteTo(&sink); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if sink.String() != "reused" {
		t.Errorf("spool aliased the caller's buffer: %q", sink.String())
	}
}

func TestSpoolReportsDrainerError(t *testing.T) {
	s := newSpool()
	failure := errors.New("read failed")
	s.Write([]byte("partial"))
	s.finish(failure)

	var sink bytes.Buffer
	_, err := s.WriteTo(&sink)
	if !errors.Is(err, failure) {
		t.Fatalf("WriteTo error = %v, want %v", err, failure)
	}
	if sink.String() != "partial" {
		t.Errorf("bytes before the failure were not emitted: %q", sink.String())
	}
}

func TestSpoolStopsOnWriterError(t *testing.T) {
	s := newSpool()
	s.Write([]byte("data"))
	s.finish(nil)

	failure := errors.New("sink closed")
	if _, err := s.WriteTo(failingWriter{err: failure}); !errors.Is(err, failure) {
		t.Errorf("WriteTo error = %v, want %v", err, failure)
	}
}
