// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for the tool's
// on-disk artifacts (session reports). The relay wire protocol itself
// is raw bytes and never passes through this package.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items, so
// the same report always produces identical bytes. Time values are
// encoded as RFC 3339 strings with nanosecond precision.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
package codec
