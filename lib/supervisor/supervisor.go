// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/stdinforcer/lib/pipes"
)

// LaunchExitCode is the exit code reported for a child that failed
// before its program was loaded.
const LaunchExitCode = 1

// SpawnError means no child process could be created. It is fatal to
// the tool.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("creating process for %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// LaunchError means the child could not rebind its streams or load the
// program. It is fatal to the child only.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitStatus is how a child terminated.
type ExitStatus struct {
	// Launched is false when the program never started (see
	// LaunchError). Code is then LaunchExitCode.
	Launched bool

	// Code is the exit code, or -1 if the child was killed by a signal.
	Code int

	// Signal names the terminating signal ("SIGKILL"), if any.
	Signal string
}

// Child is a spawned target program.
type Child struct {
	invocation Invocation
	cmd        *exec.Cmd
	launchErr  *LaunchError
	logger     *slog.Logger
}

// Spawn starts invocation with its stdin, stdout, and stderr bound to
// ends. Spawn takes ownership of ends: they are closed before it
// returns, on every path, so the only remaining references are the
// child's own.
//
// A nil error with a non-nil LaunchError on the returned Child means
// the child side failed and its diagnostic has been written to
// ends.Stderr.
func Spawn(invocation Invocation, ends pipes.ChildEnds, logger *slog.Logger) (*Child, error) {
	defer ends.Close()

	logger = logger.With("component", "supervisor")
	if invocation.Len() == 0 {
		return nil, ErrEmptyInvocation
	}

	argv := invocation.Argv()
	cmd := &exec.Cmd{
		Path:   argv[0],
		Args:   argv,
		Stdin:  ends.Stdin,
		Stdout: ends.Stdout,
		Stderr: ends.Stderr,
	}

	if err := cmd.Start(); err != nil {
		if isProcessCreationFailure(err) {
			logger.Debug("process creation failed", "path", invocation.Path(), "error", err)
			return nil, &SpawnError{Path: invocation.Path(), Err: err}
		}

		launchErr := &LaunchError{Path: invocation.Path(), Err: err}
		logger.Debug("child failed to launch", "path", invocation.Path(), "error", err)
		if writeErr := writeLaunchDiagnostic(ends.Stderr, err); writeErr != nil {
			logger.Warn("writing launch diagnostic to child stderr", "error", writeErr)
		}
		return &Child{invocation: invocation, launchErr: launchErr, logger: logger}, nil
	}

	logger.Debug("child started", "path", invocation.Path(), "pid", cmd.Process.Pid, "argc", invocation.Len())
	return &Child{invocation: invocation, cmd: cmd, logger: logger}, nil
}

// Pid returns the child's process ID, or 0 if it never launched.
func (c *Child) Pid() int {
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// LaunchError returns the child-side launch failure, or nil.
func (c *Child) LaunchError() *LaunchError { return c.launchErr }

// Wait blocks until the child terminates on its own and returns how it
// ended. A non-zero exit or a signal is reported in ExitStatus, not as
// an error; the error is reserved for failures of the wait itself. Wait
// must be called at most once.
func (c *Child) Wait() (ExitStatus, error) {
	if c.launchErr != nil {
		return ExitStatus{Launched: false, Code: LaunchExitCode}, nil
	}

	err := c.cmd.Wait()
	state := c.cmd.ProcessState
	if state == nil {
		return ExitStatus{Launched: true, Code: -1}, fmt.Errorf("waiting for child %d: %w", c.Pid(), err)
	}

	status := ExitStatus{Launched: true, Code: state.ExitCode()}
	if waitStatus, ok := state.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
		status.Signal = unix.SignalName(waitStatus.Signal())
	}
	c.logger.Debug("child exited", "pid", c.Pid(), "code", status.Code, "signal", status.Signal)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return status, fmt.Errorf("waiting for child %d: %w", c.Pid(), err)
	}
	return status, nil
}

// isProcessCreationFailure reports whether a Start error came from
// creating the process rather than from the child's side of the fork.
func isProcessCreationFailure(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.ENOSYS)
}

// writeLaunchDiagnostic writes "execve: <reason>" the way the failed
// child would have reported it on its own stderr.
func writeLaunchDiagnostic(w io.Writer, err error) error {
	reason := err.Error()
	var errno unix.Errno
	if errors.As(err, &errno) {
		reason = errno.Error()
	}
	_, writeErr := fmt.Fprintf(w, "execve: %s\n", reason)
	return writeErr
}
