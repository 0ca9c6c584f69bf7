package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Database.MigrateOnStart {
		t.Fatalf("expected migrate_on_start default true")
	}
	if cfg.MagicLink.ExpirationHours != 24 {
		t.Fatalf("expected default magic link expiration 24h, got %d", cfg.MagicLink.ExpirationHours)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  host: 127.0.0.1
  port: 9090
database:
  url: postgres://example/db
admin:
  emails:
    - chief@example.org
magic_link:
  base_url: https://club.example.org
  expiration_hours: 48
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Fatalf("unexpected server config: %#v", cfg.Server)
	}
	if cfg.Database.URL != "postgres://example/db" {
		t.Fatalf("unexpected database url: %s", cfg.Database.URL)
	}
	if len(cfg.Admin.Emails) != 1 || cfg.Admin.Emails[0] != "chief@example.org" {
		t.Fatalf("unexpected admin emails: %#v", cfg.Admin.Emails)
	}
	if cfg.MagicLink.ExpirationHours != 48 {
		t.Fatalf("expected overridden expiration 48h, got %d", cfg.MagicLink.ExpirationHours)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected defaults preserved, got %#v", cfg.Server)
	}
}
