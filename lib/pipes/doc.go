// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipes provides the pipe fabric between stdin-forcer and its
// child: three independent unidirectional pipes allocated before the
// child exists.
//
//	input   parent writes  ->  child reads  (child stdin)
//	output  child writes   ->  parent reads (child stdout)
//	error   child writes   ->  parent reads (child stderr)
//
// Every descriptor is created close-on-exec, so nothing leaks into the
// child except the three endpoints explicitly rebound onto its standard
// streams. [Fabric.Child] and [Fabric.Parent] partition the six
// endpoints by role; each side closes the other's view as soon as the
// child has been created, which is what lets end-of-stream propagate
// when the owning side closes its end.
//
// Parent endpoints are switched to non-blocking mode so the Go runtime
// poller manages them: a goroutine blocked reading the child's output
// is released when the endpoint is closed. Child endpoints stay in
// blocking mode because that is what the child program expects on its
// standard streams.
//
// [RetryWriter] implements the forwarding discipline for the input
// pipe: a write that is rejected transiently is retried after a short
// backoff rather than surfaced, and no byte is ever dropped.
package pipes
