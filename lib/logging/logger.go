// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bureau-foundation/stdinforcer/lib/config"
)

// New creates a logger writing to w at the level and format from cfg.
// With format auto, w is checked for a terminal: only an *os.File can
// be one, anything else gets JSON.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var handler slog.Handler
	if useText(w, cfg.Log.Format) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func useText(w io.Writer, format string) bool {
	switch strings.ToLower(format) {
	case config.FormatText:
		return true
	case config.FormatJSON:
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
