// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and servers
// Author:      Mike Stoffels
// Created:     2026-10-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for lexan components
const (
	// Platform version
	Platform = "0.3.0"

	// Component versions
	Lexer    = "0.3.0"
	Parser   = "0.3.0"
	Server   = "0.3.0"
	RPC      = "0.2.0"
	Terminal = "0.2.0"
)

// Set at build time via -ldflags "-X github.com/msto63/lexan/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "lexer":
		return Lexer
	case "parser":
		return Parser
	case "server", "http":
		return Server
	case "rpc", "grpc":
		return RPC
	case "tui":
		return Terminal
	default:
		return Platform
	}
}

// String returns a one-line build description
func String() string {
	return fmt.Sprintf("lexan %s (commit %s, built %s, %s %s/%s)",
		Platform, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
