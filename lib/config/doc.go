// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for stdin-forcer.
//
// Configuration is optional. When present it is loaded from a single
// file named by:
//   - the --config flag, or
//   - the STDIN_FORCER_CONFIG environment variable.
//
// There is no automatic discovery. Files ending in .json or .jsonc are
// parsed as JSON with comments and trailing commas allowed, and files
// ending in .yaml or .yml as YAML. Any other extension is an error.
// Unknown fields are rejected in both formats so a typo never silently
// falls back to a default.
//
// A small set of environment variables override file values after
// loading (see [Resolve]); they exist so a caller that only controls
// the environment can raise the log level or request a session report
// for a single run.
package config
