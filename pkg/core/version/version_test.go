package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Platform", Platform},
		{"Lexer", Lexer},
		{"Parser", Parser},
		{"Server", Server},
		{"RPC", RPC},
		{"Terminal", Terminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.version == "" {
				t.Errorf("%s version is empty", tt.name)
			}
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestServiceVersion(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		expected string
	}{
		{"lexer", "lexer", Lexer},
		{"parser", "parser", Parser},
		{"http alias", "http", Server},
		{"grpc alias", "grpc", RPC},
		{"tui", "tui", Terminal},
		{"unknown component", "unknown", Platform},
		{"empty component", "", Platform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ServiceVersion(tt.service)
			if result != tt.expected {
				t.Errorf("ServiceVersion(%q) = %q, want %q", tt.service, result, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "lexan "+Platform) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, "commit "+Commit) {
		t.Errorf("String() = %q, missing commit", s)
	}
}
