// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/stdinforcer/lib/codec"
	"github.com/bureau-foundation/stdinforcer/lib/frame"
	"github.com/bureau-foundation/stdinforcer/lib/relay"
	"github.com/bureau-foundation/stdinforcer/lib/supervisor"
)

func sampleSummary() relay.Summary {
	started := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	return relay.Summary{
		SessionID: "01JQ0000000000000000000000",
		Frame: frame.Result{
			Kind:      frame.KindShort,
			Marker:    frame.MarkerShort,
			Declared:  3,
			Forwarded: 3,
		},
		Input:        relay.StreamStats{Bytes: 3, Digest: blake3.Sum256([]byte("abc"))},
		Stdout:       relay.StreamStats{Bytes: 3, Digest: blake3.Sum256([]byte("abc"))},
		Stderr:       relay.StreamStats{Digest: blake3.Sum256(nil)},
		WriteRetries: 2,
		Exit:         supervisor.ExitStatus{Launched: true, Code: 0},
		StartedAt:    started,
		FinishedAt:   started.Add(15 * time.Millisecond),
	}
}

func TestNew(t *testing.T) {
	argv := []string{"/bin/cat", "-u"}
	report := New(sampleSummary(), argv, "v1.2.3")
	argv[0] = "mutated"

	if report.Argv[0] != "/bin/cat" {
		t.Errorf("report shares the caller's argv: %v", report.Argv)
	}
	if report.Frame.Kind != "short" || report.Frame.Declared != 3 || report.Frame.Forwarded != 3 {
		t.Errorf("Frame = %+v", report.Frame)
	}
	wantDigest := blake3.Sum256([]byte("abc"))
	if string(report.Input.Digest) != string(wantDigest[:]) {
		t.Errorf("input digest = %x, want %x", report.Input.Digest, wantDigest)
	}
	if !report.Child.Launched || report.Child.ExitCode != 0 || report.Child.Signal != "" {
		t.Errorf("Child = %+v", report.Child)
	}
	if report.Version != "v1.2.3" || report.WriteRetries != 2 {
		t.Errorf("Version/WriteRetries = %q/%d", report.Version, report.WriteRetries)
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")
	written := New(sampleSummary(), []string{"/bin/cat"}, "dev")

	if err := Write(path, written); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("report mode = %o, want 600", mode)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("temporary file left behind (Stat error %v)", err)
	}

	read, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if read.SessionID != written.SessionID || read.Frame != written.Frame || read.Child != written.Child {
		t.Errorf("Read = %+v, want %+v", read, written)
	}
	if !read.StartedAt.Equal(written.StartedAt) || !read.FinishedAt.Equal(written.FinishedAt) {
		t.Errorf("timestamps = %v..%v, want %v..%v",
			read.StartedAt, read.FinishedAt, written.StartedAt, written.FinishedAt)
	}
	if read.Stdout.Bytes != 3 || string(read.Stdout.Digest) != string(written.Stdout.Digest) {
		t.Errorf("Stdout = %+v, want %+v", read.Stdout, written.Stdout)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	directory := t.TempDir()
	report := New(sampleSummary(), []string{"/bin/cat"}, "dev")

	first := filepath.Join(directory, "first.cbor")
	second := filepath.Join(directory, "second.cbor")
	if err := Write(first, report); err != nil {
		t.Fatalf("Write first: %v", err)
	}
	if err := Write(second, report); err != nil {
		t.Fatalf("Write second: %v", err)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if string(a) != string(b) {
		t.Error("encoding the same report twice produced different bytes")
	}
}

func TestWriteOmitsEmptyOptionalFields(t *testing.T) {
	report := New(sampleSummary(), []string{"/bin/cat"}, "dev")
	data, err := codec.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := codec.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := fields["session_id"]; !ok {
		t.Errorf("encoded report lacks session_id: %v", fields)
	}
	child, ok := fields["child"].(map[any]any)
	if !ok {
		t.Fatalf("child = %T, want a map", fields["child"])
	}
	if _, ok := child["signal"]; ok {
		t.Errorf("child carries an empty signal: %v", child)
	}
	frameFields, ok := fields["frame"].(map[any]any)
	if !ok {
		t.Fatalf("frame = %T, want a map", fields["frame"])
	}
	for _, absent := range []string{"truncated", "terminated"} {
		if _, ok := frameFields[absent]; ok {
			t.Errorf("frame carries unset %s: %v", absent, frameFields)
		}
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "session.cbor")
	if err := Write(path, Report{}); err == nil {
		t.Fatal("Write into a missing directory succeeded")
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.cbor"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read error = %v, want fs.ErrNotExist", err)
	}
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Read(path); err == nil || !strings.Contains(err.Error(), "decoding report") {
		t.Errorf("Read error = %v, want a decoding error", err)
	}
}
