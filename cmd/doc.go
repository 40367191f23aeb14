// Package cmd implements the command-line interface for the nsmutex
// cross-process mutual-exclusion broker. It provides a hierarchical command
// structure for holding mutexes around arbitrary commands and for
// inspecting derived lock identities.
//
// The package is organized into several subpackages:
//
//   - mutex: Commands for mutex operations (run, derive)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See nsmutex -help for a list of all commands.
package cmd
