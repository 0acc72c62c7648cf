// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/stdinforcer/lib/codec"
	"github.com/bureau-foundation/stdinforcer/lib/relay"
)

// Report is the persisted record of one session.
type Report struct {
	SessionID string   `cbor:"session_id"`
	Version   string   `cbor:"version"`
	Argv      []string `cbor:"argv"`

	Frame Frame `cbor:"frame"`

	Input  Stream `cbor:"input"`
	Stdout Stream `cbor:"stdout"`
	Stderr Stream `cbor:"stderr"`

	WriteRetries int `cbor:"write_retries,omitempty"`

	Child Child `cbor:"child"`

	StartedAt  time.Time `cbor:"started_at"`
	FinishedAt time.Time `cbor:"finished_at"`
}

// Frame records how the caller's input was framed.
type Frame struct {
	Kind       string `cbor:"kind"`
	Declared   uint32 `cbor:"declared,omitempty"`
	Forwarded  int64  `cbor:"forwarded"`
	Truncated  bool   `cbor:"truncated,omitempty"`
	Terminated bool   `cbor:"terminated,omitempty"`
}

// Stream is the size and BLAKE3-256 digest of one relayed stream.
type Stream struct {
	Bytes  int64  `cbor:"bytes"`
	Digest []byte `cbor:"blake3"`
}

// Child records how the target program ended.
type Child struct {
	Launched bool   `cbor:"launched"`
	ExitCode int    `cbor:"exit_code"`
	Signal   string `cbor:"signal,omitempty"`
}

// New builds a Report from a completed session.
func New(summary relay.Summary, argv []string, version string) Report {
	return Report{
		SessionID: summary.SessionID,
		Version:   version,
		Argv:      append([]string(nil), argv...),
		Frame: Frame{
			Kind:       summary.Frame.Kind.String(),
			Declared:   summary.Frame.Declared,
			Forwarded:  summary.Frame.Forwarded,
			Truncated:  summary.Frame.Truncated,
			Terminated: summary.Frame.Terminated,
		},
		Input:        stream(summary.Input),
		Stdout:       stream(summary.Stdout),
		Stderr:       stream(summary.Stderr),
		WriteRetries: summary.WriteRetries,
		Child: Child{
			Launched: summary.Exit.Launched,
			ExitCode: summary.Exit.Code,
			Signal:   summary.Exit.Signal,
		},
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}
}

func stream(stats relay.StreamStats) Stream {
	return Stream{Bytes: stats.Bytes, Digest: append([]byte(nil), stats.Digest[:]...)}
}

// Write atomically writes report to path. The parent directory must
// already exist.
func Write(path string, report Report) error {
	data, err := codec.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary report file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary report file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary report file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary report file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming report into place: %w", err)
	}

	directory, err := os.Open(filepath.Dir(path))
	if err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}

// Read decodes the report at path. A missing file yields an error
// wrapping fs.ErrNotExist.
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := codec.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return report, nil
}
