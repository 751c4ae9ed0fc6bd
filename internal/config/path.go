package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the directory snowgen keeps its ledger under when
// no ledger.dir is configured. XDG_DATA_HOME wins; root processes use
// /var/lib; everyone else gets a per-user location.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "snowgen")
	}

	if os.Geteuid() == 0 && isDir("/var/lib") {
		return "/var/lib/snowgen"
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// macOS
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "snowgen")
	}
	// Windows
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "snowgen")
	}
	return filepath.Join(homeDir, ".snowgen")
}

// DefaultLedgerDir is the ledger location inside DefaultDataDir.
func DefaultLedgerDir() string {
	return filepath.Join(DefaultDataDir(), "ledger")
}

// AutoLedgerDir as ledger.dir selects DefaultLedgerDir.
const AutoLedgerDir = "auto"

// ResolveLedgerDir expands AutoLedgerDir and returns any other value as is.
func ResolveLedgerDir(dir string) string {
	if dir == AutoLedgerDir {
		return DefaultLedgerDir()
	}
	return dir
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
