package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.QueryAttempts != 3 || !cfg.ApplyDPI || !cfg.ApplyTopology {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.QueryRetryDelay != 100*time.Millisecond {
		t.Fatalf("expected 100ms retry delay, got %s", cfg.QueryRetryDelay)
	}
	if strings.HasPrefix(cfg.ProfilesFile, "~") || filepath.Base(cfg.ProfilesFile) != "profiles.json" {
		t.Fatalf("expected expanded profiles path, got %s", cfg.ProfilesFile)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
profiles_file: /tmp/profiles/desk.json
log_level: debug
query_attempts: 5
query_retry_delay: 250ms
apply_dpi: false
apply_topology: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfilesFile != "/tmp/profiles/desk.json" {
		t.Errorf("unexpected profiles file %s", cfg.ProfilesFile)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", cfg.Level())
	}
	if cfg.QueryAttempts != 5 || cfg.QueryRetryDelay != 250*time.Millisecond {
		t.Errorf("unexpected retry settings %d/%s", cfg.QueryAttempts, cfg.QueryRetryDelay)
	}
	if cfg.ApplyDPI {
		t.Errorf("expected apply_dpi false")
	}
	if cfg.ApplyTopology {
		t.Errorf("expected apply_topology false")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("DISPLAY_SWITCHER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env override, got %s", cfg.LogLevel)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{ProfilesFile: "p.json", LogLevel: "info", QueryAttempts: 1}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero attempts", func(c *Config) { c.QueryAttempts = 0 }, true},
		{"negative delay", func(c *Config) { c.QueryRetryDelay = -time.Second }, true},
		{"empty profiles file", func(c *Config) { c.ProfilesFile = " " }, true},
	}
	for _, tt := range tests {
		c := valid
		tt.mutate(&c)
		err := c.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
