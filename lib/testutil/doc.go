// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the relay packages.
//
// [RequireReceive] wraps the select-with-timeout
// pattern so a relay test that would otherwise hang on a stuck child
// fails with a message instead.
//
// [WriteScript] drops an executable /bin/sh script into the test's
// temporary directory. Relay and supervisor tests use it to build
// children with precise stdout/stderr behavior without compiling
// helper binaries.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
