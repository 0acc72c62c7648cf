// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
	"time"
)

type sampleRecord struct {
	Session   string    `cbor:"session"`
	Forwarded int64     `cbor:"forwarded"`
	Digest    []byte    `cbor:"digest,omitempty"`
	Started   time.Time `cbor:"started"`
}

func TestMarshalIsDeterministic(t *testing.T) {
	record := sampleRecord{
		Session:   "01JABCDEF",
		Forwarded: 5,
		Digest:    []byte{0xde, 0xad},
		Started:   time.Date(2026, 10, 19, 12, 0, 0, 123, time.UTC),
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Marshal is not deterministic:\n%x\n%x", first, second)
	}

	var decoded sampleRecord
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Started.Equal(record.Started) {
		t.Errorf("Started = %v, want %v (nanoseconds must survive)", decoded.Started, record.Started)
	}
	if decoded.Forwarded != 5 || !bytes.Equal(decoded.Digest, record.Digest) {
		t.Errorf("decoded = %+v, want %+v", decoded, record)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{"session": "abc", "future_field": 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Session != "abc" {
		t.Errorf("Session = %q, want abc", decoded.Session)
	}
}
