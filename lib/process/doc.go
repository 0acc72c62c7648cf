// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helpers for
// stdin-forcer. Standard output belongs to the relay protocol, so the
// only raw writes the tool makes outside the structured logger are the
// fatal diagnostics here, always on standard error.
package process
