// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame parses the single input frame a caller sends to
// stdin-forcer and forwards its payload to the child.
//
// A frame starts with a one-byte marker:
//
//	0x00                      no input
//	0x01 <len:1> <payload>    exactly len bytes (0..255)
//	0x04 <len:4 BE> <payload> exactly len bytes (0..2^32-1)
//	m    <bytes...> 0x00      m is itself the first payload byte; the
//	                          payload runs to the next zero byte or EOF
//
// Length-prefixed payloads are forwarded verbatim, zero bytes
// included. If the caller's input ends before the declared length the
// payload is forwarded as far as it goes and the result is marked
// Truncated; a short payload is treated as the natural end of input,
// not a protocol violation. The one hard failure is a 0x01 marker with
// no length byte after it ([ErrMissingLength]).
//
// Only one frame is parsed per session. Anything the caller writes
// after the frame is ignored.
package frame
