// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// stdin-forcer runs a program with exactly one framed payload on its
// standard input and returns everything the program wrote, tagged by
// stream.
//
//	stdin-forcer [--config PATH] [--version] [--help] [--] <executable> [arg ...]
//
// Only those exact flag forms (and --config=PATH) are recognized, and
// only before the executable. Any other argument, even one starting
// with a dash, begins the target command. The whole command line,
// flags and "--" included, is limited to 63 arguments.
// The first byte of standard input selects the framing:
//
//	0x00                  no input
//	0x01 L payload        L (one byte) payload bytes
//	0x04 LLLL payload     big-endian 32-bit length, then payload
//	anything else         that byte and everything up to a zero byte
//
// The payload is written to the child's stdin, which is then closed.
// Once the child has closed its outputs, standard output carries 0x91
// followed by the child's stdout, then 0x92 followed by its stderr. A
// tag is omitted when its stream is empty.
//
// The executable is used as given, with no PATH search. If it cannot
// be run, the reason appears on the child's stderr stream as
// "execve: <reason>".
//
// The exit status is 0 whenever the child was run to completion,
// whatever its own exit status; 2 for a bad invocation (including
// --version or --help without an executable); 1 for any other failure.
// Diagnostics go to standard error, never standard output.
package main
