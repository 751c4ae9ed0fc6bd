package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/snowgen" {
		t.Errorf("Expected /custom/data/snowgen, got %s", got)
	}
	if got := DefaultLedgerDir(); got != "/custom/data/snowgen/ledger" {
		t.Errorf("Expected ledger under data dir, got %s", got)
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root resolves to /var/lib")
	}
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")

	if got := DefaultDataDir(); got != "./data" {
		t.Errorf("Expected fallback to './data', got %s", got)
	}
}

func TestDefaultDataDirUserHome(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root resolves to /var/lib")
	}
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)

	if got := DefaultDataDir(); got != filepath.Join(home, ".snowgen") {
		t.Errorf("Expected dotdir in home, got %s", got)
	}

	if err := os.Mkdir(filepath.Join(home, "Library"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DefaultDataDir(); got != filepath.Join(home, "Library", "Application Support", "snowgen") {
		t.Errorf("Expected macOS location, got %s", got)
	}
}

func TestIsDir(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "existing directory", path: ".", expected: true},
		{name: "non-existent path", path: "/non/existent/path/that/does/not/exist", expected: false},
		{name: "file instead of directory", path: os.Args[0], expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDir(tt.path); got != tt.expected {
				t.Errorf("isDir(%s) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestDefaultDataDirConsistency(t *testing.T) {
	a, b := DefaultDataDir(), DefaultDataDir()
	if a != b {
		t.Errorf("DefaultDataDir should be consistent, got %s and %s", a, b)
	}
	if a != "./data" && !strings.HasSuffix(a, "snowgen") {
		t.Errorf("DefaultDataDir should end with snowgen, got %s", a)
	}
}

func TestResolveLedgerDir(t *testing.T) {
	if got := ResolveLedgerDir(AutoLedgerDir); got != DefaultLedgerDir() {
		t.Errorf("auto resolved to %s", got)
	}
	if got := ResolveLedgerDir("/var/ledger"); got != "/var/ledger" {
		t.Errorf("explicit dir changed to %s", got)
	}
	if got := ResolveLedgerDir(""); got != "" {
		t.Errorf("empty dir changed to %s", got)
	}
}
