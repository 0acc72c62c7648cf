// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the structured logger for stdin-forcer.
//
// Standard output carries the relay protocol, so diagnostics always go
// to standard error. When standard error is a terminal the logger uses
// slog.TextHandler for human-readable output; when it is piped or
// redirected it uses slog.JSONHandler so a supervising program can parse
// it. Callers scope the logger with component and session context:
//
//	logger := logging.New(os.Stderr, cfg).With("session", id)
package logging
