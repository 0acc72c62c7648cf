// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"io"

	"github.com/zeebo/blake3"
)

// taggedWriter writes tag once, immediately before the first non-empty
// write. Every failure is an *OutputError.
type taggedWriter struct {
	w      io.Writer
	tag    byte
	tagged bool
}

func (t *taggedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !t.tagged {
		if _, err := t.w.Write([]byte{t.tag}); err != nil {
			return 0, &OutputError{Tag: t.tag, Err: err}
		}
		t.tagged = true
	}
	n, err := t.w.Write(p)
	if err != nil {
		return n, &OutputError{Tag: t.tag, Err: err}
	}
	return n, nil
}

// digestWriter counts and hashes the bytes w accepts.
type digestWriter struct {
	w      io.Writer
	hasher *blake3.Hasher
	bytes  int64
}

func newDigestWriter(w io.Writer) *digestWriter {
	return &digestWriter{w: w, hasher: blake3.New()}
}

func (d *digestWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	if n > 0 {
		d.hasher.Write(p[:n])
		d.bytes += int64(n)
	}
	return n, err
}

func (d *digestWriter) stats() StreamStats {
	var stats StreamStats
	stats.Bytes = d.bytes
	copy(stats.Digest[:], d.hasher.Sum(nil))
	return stats
}
