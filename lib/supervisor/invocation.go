// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"fmt"
	"slices"
)

// MaxInvocationLen is the largest accepted invocation vector: the
// executable plus 61 arguments. Together with the tool's own name that
// keeps the process argument count below 64.
const MaxInvocationLen = 62

var (
	// ErrEmptyInvocation is returned for an invocation with no
	// executable, or an empty executable path.
	ErrEmptyInvocation = errors.New("no target executable given")

	// ErrInvocationTooLong is returned when the invocation vector
	// exceeds MaxInvocationLen.
	ErrInvocationTooLong = errors.New("too many arguments")
)

// Invocation is the immutable argument vector of the target program:
// the executable path followed by its arguments.
type Invocation struct {
	argv []string
}

// NewInvocation validates argv and takes a private copy of it.
func NewInvocation(argv []string) (Invocation, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Invocation{}, ErrEmptyInvocation
	}
	if len(argv) > MaxInvocationLen {
		return Invocation{}, fmt.Errorf("%w: %d given, at most %d accepted (executable included)",
			ErrInvocationTooLong, len(argv), MaxInvocationLen)
	}
	return Invocation{argv: slices.Clone(argv)}, nil
}

// Path returns the executable path.
func (i Invocation) Path() string {
	if len(i.argv) == 0 {
		return ""
	}
	return i.argv[0]
}

// Argv returns a copy of the full vector, executable first.
func (i Invocation) Argv() []string { return slices.Clone(i.argv) }

// Len returns the number of entries in the vector.
func (i Invocation) Len() int { return len(i.argv) }
