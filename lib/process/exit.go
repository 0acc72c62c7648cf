// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes returned by the tool itself. The child's exit status is
// never propagated.
const (
	// ExitSuccess is returned whenever the relay reaches the join phase.
	ExitSuccess = 0

	// ExitFailure covers pipe creation, process creation, and caller
	// input failures.
	ExitFailure = 1

	// ExitUsage is returned when the invocation precondition fails
	// (missing target, too many arguments, unknown flags).
	ExitUsage = 2
)

// Program is the name used as the prefix of fatal diagnostics.
const Program = "stdin-forcer"

// UsageError marks an error as an invocation precondition failure.
// Fatal maps it to ExitUsage.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Code returns the exit code for err: ExitSuccess for nil, ExitUsage
// for a UsageError anywhere in the chain, ExitFailure otherwise.
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitFailure
}

// Report writes "stdin-forcer: error: err" to w.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "%s: error: %v\n", Program, err)
}

// Fatal reports err on stderr and exits with Code(err). Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(Code(err))
}
