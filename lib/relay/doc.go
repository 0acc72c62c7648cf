// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay runs one stdin-forcer session: it spawns the target
// program on a fresh [pipes.Fabric], forwards one framed payload to
// the child's stdin, closes it, and relays the child's stdout and then
// its stderr to the caller, each behind a one-byte tag.
//
// The caller observes three strictly ordered phases: input consumed,
// tagged stdout, tagged stderr. Internally the session runs four
// goroutines under an errgroup:
//
//   - the forwarder parses the frame and writes its payload into the
//     child's stdin, then closes it so the child sees end of input
//   - two drainers read the child's stdout and stderr to end of stream
//     into in-memory spools, so the child can never stall on a full
//     pipe regardless of which stream it writes first
//   - the emitter waits for the forwarder, then streams the stdout
//     spool to the caller (live once it has caught up), then the
//     stderr spool
//
// A tag is written immediately before the first byte of its stream and
// never for an empty stream. After the emitter finishes the session
// waits for the child; its exit status is recorded in the [Summary]
// but never changes the outcome of [Session.Run].
//
// A fatal error (pipe creation, process creation, a frame with no
// length byte, a failed read of the caller's input, a failed write of
// the caller's output) releases every parent endpoint and returns
// without waiting for the child.
package relay
