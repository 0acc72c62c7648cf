// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/stdinforcer/lib/clock"
	"github.com/bureau-foundation/stdinforcer/lib/config"
	"github.com/bureau-foundation/stdinforcer/lib/logging"
	"github.com/bureau-foundation/stdinforcer/lib/process"
	"github.com/bureau-foundation/stdinforcer/lib/relay"
	"github.com/bureau-foundation/stdinforcer/lib/report"
	"github.com/bureau-foundation/stdinforcer/lib/supervisor"
	"github.com/bureau-foundation/stdinforcer/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

// maxProcessArgs bounds the tool's own argument count, its name
// included. Leading flags and "--" count against it.
const maxProcessArgs = supervisor.MaxInvocationLen + 2

// errNoTarget is the usage failure for a command line with no target.
var errNoTarget = errors.New("no target executable specified")

// options is the parsed command line.
type options struct {
	configPath  string
	showVersion bool
	showHelp    bool
	command     []string
}

// parseArgs splits args (the process arguments after the tool name)
// into leading flags and the target command. Only the exact forms
// --config PATH, --config=PATH, --version and --help are flags, and
// only before the target; "--" ends them. Every other argument,
// including one that starts with a dash, begins the target command,
// which is passed through verbatim.
func parseArgs(args []string) (options, error) {
	if len(args)+1 >= maxProcessArgs {
		return options{}, &process.UsageError{Err: fmt.Errorf("%w: %d process arguments, limit is %d",
			supervisor.ErrInvocationTooLong, len(args)+1, maxProcessArgs-1)}
	}

	leading, command := splitLeadingFlags(args)

	var opts options
	flagSet := pflag.NewFlagSet(process.Program, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "configuration file (.yaml, .yml, .json, or .jsonc)")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information to stderr")
	flagSet.BoolVar(&opts.showHelp, "help", false, "print usage to stderr")
	if err := flagSet.Parse(leading); err != nil {
		return options{}, &process.UsageError{Err: err}
	}

	opts.command = command
	return opts, nil
}

// splitLeadingFlags returns the recognized leading flag arguments and
// the arguments after them, with a terminating "--" dropped.
func splitLeadingFlags(args []string) (leading, rest []string) {
	i := 0
	for i < len(args) {
		argument := args[i]
		switch {
		case argument == "--":
			return args[:i], args[i+1:]
		case argument == "--version", argument == "--help", strings.HasPrefix(argument, "--config="):
			i++
		case argument == "--config":
			// A missing value is left for pflag to report.
			i = min(i+2, len(args))
		default:
			return args[:i], args[i:]
		}
	}
	return args, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.showHelp {
		printHelp(stderr)
	}
	if opts.showVersion {
		fmt.Fprintf(stderr, "%s %s\n", process.Program, version.Full())
	}
	if len(opts.command) == 0 {
		return &process.UsageError{Err: errNoTarget}
	}

	invocation, err := supervisor.NewInvocation(opts.command)
	if err != nil {
		return &process.UsageError{Err: err}
	}

	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := logging.New(stderr, cfg)

	session := &relay.Session{
		ID:           ulid.Make().String(),
		Invocation:   invocation,
		Input:        stdin,
		Output:       stdout,
		Logger:       logger,
		Clock:        clock.Real(),
		WriteBackoff: cfg.WriteBackoff(),
	}
	summary, err := session.Run(context.Background())
	if err != nil {
		return err
	}

	if cfg.Report.Path != "" {
		record := report.New(summary, invocation.Argv(), version.Info())
		if err := report.Write(cfg.Report.Path, record); err != nil {
			logger.Warn("writing session report", "path", cfg.Report.Path, "session", session.ID, "error", err)
		}
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `stdin-forcer runs a program with one framed payload on its stdin and
relays its stdout and stderr back, each behind a one-byte tag.

Usage:
  %[1]s [--config PATH] [--version] [--help] [--] <executable> [arg ...]

Flags are only recognized before the executable. Every other argument,
including one that starts with a dash, is the executable or one of its
arguments. At most 63 arguments in total, counting flags and "--".
--version and --help print to stderr; without an executable the exit
status is 2.

Input framing (first byte of stdin):
  0x00               no input
  0x01 L ...         one length byte, then L bytes
  0x04 LLLL ...      big-endian 32-bit length, then that many bytes
  other              that byte and everything up to a zero byte

Output: 0x91 + child stdout, then 0x92 + child stderr. Empty streams
are omitted.

Environment:
  %[2]s    configuration file (same as --config)
  %[3]s  debug | info | warn | error
  %[4]s auto | text | json
  %[5]s    write a CBOR session report to this path
`, process.Program, config.EnvConfig, config.EnvLogLevel, config.EnvLogFormat, config.EnvReport)
}
