package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored: %v", err)
	}
	if cfg.Practice.Words != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[practice]
words = 40
tick-ms = 200
text = "poem"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 40 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.TickMs == nil || *cfg.Practice.TickMs != 200 {
		t.Fatalf("unexpected tick-ms: %v", cfg.Practice.TickMs)
	}
	if cfg.Practice.Text == nil || *cfg.Practice.Text != "poem" {
		t.Fatalf("unexpected text: %v", cfg.Practice.Text)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
	if cfg.Practice.Lang != nil {
		t.Fatalf("expected unset lang")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwordz = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "retype", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "retype", "retype.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "retype", "retype.log") {
		t.Fatalf("unexpected log path %q", got)
	}
	if got := DefaultWordListPath("de"); got != filepath.Join("/cfg", "retype", "wordlists", "de.txt") {
		t.Fatalf("unexpected wordlist path %q", got)
	}
	if got := DefaultWordfreqCacheDir(); got != filepath.Join("/cache", "retype", "wordfreq") {
		t.Fatalf("unexpected cache dir %q", got)
	}
}
