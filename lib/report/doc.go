// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report persists a per-session record of a relay run.
//
// A report is CBOR (Core Deterministic Encoding, via lib/codec) and is
// written atomically: the encoded bytes go to a temporary file in the
// same directory, which is fsynced and renamed into place, and the
// directory is then fsynced so the rename survives a crash. Readers
// never see a partial report. Files are created with mode 0600.
//
// Reports are diagnostic only. The tool logs a failure to write one
// and exits as it would have without it.
package report
