// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for the relay.
//
// The relay touches time in two places: the backoff sleep between
// retries of a transiently rejected pipe write, and the start/finish
// timestamps recorded in a session summary. Both go through a Clock so
// tests can drive them deterministically.
//
// In production:
//
//	writer := &pipes.RetryWriter{W: input, Clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go writer.Write(data)
//	c.WaitForSleepers(1) // the writer is parked in its backoff
//	c.Advance(100 * time.Microsecond)
package clock
