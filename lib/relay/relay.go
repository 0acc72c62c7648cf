// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/stdinforcer/lib/clock"
	"github.com/bureau-foundation/stdinforcer/lib/frame"
	"github.com/bureau-foundation/stdinforcer/lib/logging"
	"github.com/bureau-foundation/stdinforcer/lib/pipes"
	"github.com/bureau-foundation/stdinforcer/lib/supervisor"
)

// Output tags. Each precedes its stream on the caller's output.
const (
	TagStdout byte = 0x91
	TagStderr byte = 0x92
)

// Session is one relay run. Invocation, Input, and Output are
// required.
type Session struct {
	// ID identifies the session in logs and reports. Optional.
	ID string

	Invocation supervisor.Invocation

	// Input is the caller's framed input.
	Input io.Reader

	// Output receives the tagged child streams.
	Output io.Writer

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Clock defaults to the real clock.
	Clock clock.Clock

	// WriteBackoff is the pause before retrying a transiently rejected
	// write. Zero means pipes.DefaultBackoff.
	WriteBackoff time.Duration
}

// Summary describes a completed session.
type Summary struct {
	SessionID string

	Frame frame.Result

	Input  StreamStats
	Stdout StreamStats
	Stderr StreamStats

	// WriteRetries counts transiently rejected writes on the child's
	// input and the caller's output.
	WriteRetries int

	// Exit is the child's termination status.
	Exit supervisor.ExitStatus

	StartedAt  time.Time
	FinishedAt time.Time
}

// StreamStats is the size and BLAKE3-256 digest of one relayed stream.
type StreamStats struct {
	Bytes  int64
	Digest [32]byte
}

// OutputError wraps a failure writing the caller's output.
type OutputError struct {
	Tag byte
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("writing %s to output: %v", streamName(e.Tag), e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// ErrIncompleteSession is returned by Run when a required Session
// field is unset.
var ErrIncompleteSession = errors.New("relay: session needs an invocation, an input, and an output")

// Run executes the session. The context only tears the session down on
// a fatal error; the child is never signalled.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	if s.Invocation.Len() == 0 || s.Input == nil || s.Output == nil {
		return Summary{}, ErrIncompleteSession
	}
	now := s.clock()
	base := s.baseLogger()
	logger := base.With("component", "relay")
	summary := Summary{SessionID: s.ID, StartedAt: now.Now()}

	fabric, err := pipes.New()
	if err != nil {
		return summary, fmt.Errorf("creating pipes: %w", err)
	}
	parent := fabric.Parent()
	defer parent.Close()

	child, err := supervisor.Spawn(s.Invocation, fabric.Child(), base)
	if err != nil {
		return summary, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(groupCtx, func() { parent.Close() })
	defer stop()

	// forwarded is closed once forwardErr is final.
	forwarded := make(chan struct{})
	var forwardErr error

	inputWriter := &pipes.RetryWriter{W: parent.Input, Clock: now, Backoff: s.WriteBackoff}
	inputDigest := newDigestWriter(inputWriter)
	group.Go(func() error {
		summary.Frame, forwardErr = s.forward(inputDigest, parent.Input, logger)
		close(forwarded)
		return forwardErr
	})

	stdoutSpool, stderrSpool := newSpool(), newSpool()
	stdoutDigest, stderrDigest := newDigestWriter(stdoutSpool), newDigestWriter(stderrSpool)
	group.Go(drain("stdout", parent.Output, stdoutDigest, stdoutSpool))
	group.Go(drain("stderr", parent.Error, stderrDigest, stderrSpool))

	outputWriter := &pipes.RetryWriter{W: s.Output, Clock: now, Backoff: s.WriteBackoff}
	group.Go(func() error {
		<-forwarded
		if forwardErr != nil {
			return nil
		}
		if err := groupCtx.Err(); err != nil {
			return err
		}
		if _, err := stdoutSpool.WriteTo(&taggedWriter{w: outputWriter, tag: TagStdout}); err != nil {
			return err
		}
		_, err := stderrSpool.WriteTo(&taggedWriter{w: outputWriter, tag: TagStderr})
		return err
	})

	if err := group.Wait(); err != nil {
		logger.Debug("session failed", "error", err)
		return summary, err
	}

	summary.Input = inputDigest.stats()
	summary.Stdout = stdoutDigest.stats()
	summary.Stderr = stderrDigest.stats()
	summary.WriteRetries = inputWriter.Retries() + outputWriter.Retries()

	status, err := child.Wait()
	if err != nil {
		logger.Warn("waiting for child", "pid", child.Pid(), "error", err)
	}
	summary.Exit = status
	summary.FinishedAt = now.Now()

	logger.Info("session complete",
		"frame", summary.Frame.Kind.String(),
		"forwarded", summary.Frame.Forwarded,
		"stdout_bytes", summary.Stdout.Bytes,
		"stderr_bytes", summary.Stderr.Bytes,
		"exit_code", summary.Exit.Code,
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}

// forward copies one frame into the child's stdin and then closes it.
// A child that stops reading ends forwarding without an error.
func (s *Session) forward(dst io.Writer, input *os.File, logger *slog.Logger) (frame.Result, error) {
	result, err := frame.Forward(s.Input, dst)
	closeErr := pipes.CloseEndpoint(input)

	var writeErr *frame.WriteError
	switch {
	case errors.As(err, &writeErr) && pipes.IsBrokenPipe(writeErr.Err):
		logger.Debug("child closed its input early", "forwarded", result.Forwarded)
		return result, nil
	case err != nil:
		return result, err
	case closeErr != nil:
		return result, fmt.Errorf("closing child input: %w", closeErr)
	}
	if result.Truncated {
		logger.Debug("input ended before the declared length",
			"declared", result.Declared, "forwarded", result.Forwarded)
	}
	return result, nil
}

// drain reads one child stream to end of stream into its spool.
func drain(name string, src io.Reader, dst io.Writer, spool *spool) func() error {
	return func() error {
		_, err := io.Copy(dst, src)
		if err != nil {
			err = fmt.Errorf("draining child %s: %w", name, err)
		}
		spool.finish(err)
		return err
	}
}

func (s *Session) clock() clock.Clock {
	if s.Clock == nil {
		return clock.Real()
	}
	return s.Clock
}

func (s *Session) baseLogger() *slog.Logger {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if s.ID != "" {
		logger = logger.With("session", s.ID)
	}
	return logger
}

func streamName(tag byte) string {
	switch tag {
	case TagStdout:
		return "stdout"
	case TagStderr:
		return "stderr"
	default:
		return fmt.Sprintf("stream 0x%02x", tag)
	}
}
