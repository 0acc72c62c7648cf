// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Marker values that select a length-prefixed frame. Every other value
// starts a zero-terminated stream.
const (
	MarkerEmpty byte = 0x00
	MarkerShort byte = 0x01
	MarkerLong  byte = 0x04
)

// Terminator ends a stream frame. It is consumed, never forwarded.
const Terminator byte = 0x00

// copyBufferSize bounds each read while copying a length-prefixed
// payload.
const copyBufferSize = 32 * 1024

// ErrMissingLength is returned when a 0x01 marker is not followed by
// its length byte.
var ErrMissingLength = errors.New("frame: short frame marker without length byte")

// Kind identifies which forwarding rule a frame used.
type Kind int

const (
	// KindEmpty forwards nothing: marker 0x00 or no input at all.
	KindEmpty Kind = iota

	// KindShort is marker 0x01 with a one-byte length.
	KindShort

	// KindLong is marker 0x04 with a four-byte big-endian length.
	KindLong

	// KindStream is any other marker: the marker and everything up to
	// the next zero byte.
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindShort:
		return "short"
	case KindLong:
		return "long"
	case KindStream:
		return "stream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result describes one parsed and forwarded frame.
type Result struct {
	Kind Kind

	// Marker is the first byte read. Zero when the input was empty.
	Marker byte

	// Declared is the length from the frame header for KindShort and
	// KindLong. Zero otherwise.
	Declared uint32

	// Forwarded is the number of payload bytes accepted by the
	// destination. For KindStream this includes the marker byte.
	Forwarded int64

	// Truncated is set when the caller's input ended before the
	// declared length, or inside a KindLong length header.
	Truncated bool

	// Terminated is set when a KindStream frame ended at a zero byte
	// rather than at end of input.
	Terminated bool
}

// ReadError wraps a failure reading the caller's input other than end
// of input.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("frame: reading input: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failure of the destination. Forwarded counts the
// payload bytes accepted before it.
type WriteError struct {
	Forwarded int64
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("frame: forwarding payload after %d bytes: %v", e.Forwarded, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Forward reads one frame from src and writes its payload to dst. The
// returned Result is meaningful even when err is non-nil.
func Forward(src io.Reader, dst io.Writer) (Result, error) {
	reader, ok := src.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(src)
	}
	forwarder := &forwarder{src: reader, dst: dst}
	return forwarder.run()
}

type forwarder struct {
	src    *bufio.Reader
	dst    io.Writer
	result Result
}

func (f *forwarder) run() (Result, error) {
	marker, err := f.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return f.result, nil
		}
		return f.result, &ReadError{Err: err}
	}
	f.result.Marker = marker

	switch marker {
	case MarkerEmpty:
		return f.result, nil

	case MarkerShort:
		f.result.Kind = KindShort
		length, err := f.src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return f.result, ErrMissingLength
			}
			return f.result, &ReadError{Err: err}
		}
		f.result.Declared = uint32(length)
		return f.result, f.copyExactly(int64(length))

	case MarkerLong:
		f.result.Kind = KindLong
		var header [4]byte
		if _, err := io.ReadFull(f.src, header[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				f.result.Truncated = true
				return f.result, nil
			}
			return f.result, &ReadError{Err: err}
		}
		f.result.Declared = binary.BigEndian.Uint32(header[:])
		return f.result, f.copyExactly(int64(f.result.Declared))

	default:
		f.result.Kind = KindStream
		if err := f.write([]byte{marker}); err != nil {
			return f.result, err
		}
		return f.result, f.copyUntilTerminator()
	}
}

// copyExactly forwards length bytes, stopping short without error if
// the input ends first.
func (f *forwarder) copyExactly(length int64) error {
	buffer := make([]byte, min(length, copyBufferSize))
	remaining := length
	for remaining > 0 {
		n, err := f.src.Read(buffer[:min(remaining, int64(len(buffer)))])
		if n > 0 {
			if writeErr := f.write(buffer[:n]); writeErr != nil {
				return writeErr
			}
			remaining -= int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				f.result.Truncated = remaining > 0
				return nil
			}
			return &ReadError{Err: err}
		}
	}
	return nil
}

// copyUntilTerminator forwards bytes up to, not including, the next
// zero byte, or to end of input.
func (f *forwarder) copyUntilTerminator() error {
	for {
		chunk, err := f.src.ReadSlice(Terminator)
		if index := bytes.IndexByte(chunk, Terminator); index >= 0 {
			f.result.Terminated = true
			return f.write(chunk[:index])
		}
		if writeErr := f.write(chunk); writeErr != nil {
			return writeErr
		}
		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			return &ReadError{Err: err}
		}
	}
}

func (f *forwarder) write(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	n, err := f.dst.Write(payload)
	f.result.Forwarded += int64(n)
	if err != nil {
		return &WriteError{Forwarded: f.result.Forwarded, Err: err}
	}
	if n < len(payload) {
		return &WriteError{Forwarded: f.result.Forwarded, Err: io.ErrShortWrite}
	}
	return nil
}
