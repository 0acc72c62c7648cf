// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor spawns the target program with its standard
// streams rebound onto the child side of a [pipes.Fabric] and waits for
// it to terminate.
//
// The executable path is used verbatim, exactly as execv(2) would: no
// PATH search is performed, and a relative path resolves against the
// working directory. The environment is inherited. No descriptor other
// than the three rebound endpoints reaches the child, because every
// descriptor the tool opens is close-on-exec.
//
// Failures split into two classes. When the kernel cannot create a
// process at all (EAGAIN, ENOMEM, ENOSYS from fork/clone), [Spawn]
// returns a [*SpawnError] and the whole tool fails. Any other failure
// happens on the child's side of the fork (rebinding a stream, or
// loading the program); it is fatal to the child only. The supervisor
// writes the diagnostic onto the child's stderr endpoint, exactly where
// the failed child would have written it, and returns a [Child] whose
// Wait reports a non-zero exit. The relay then carries the diagnostic
// to the caller under the stderr tag.
//
// The supervisor never signals or kills the child.
package supervisor
