package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Windows.Seconds != 30 || cfg.Windows.OverlapSeconds != 2 {
		t.Fatalf("window defaults wrong: %+v", cfg.Windows)
	}
	if cfg.Windows.MaxConcurrent != 3 {
		t.Fatalf("concurrency default wrong: %d", cfg.Windows.MaxConcurrent)
	}
	if cfg.Style.Preset != "classic" || cfg.Style.Position != "bottom" {
		t.Fatalf("style defaults wrong: %+v", cfg.Style)
	}
	if cfg.Style.Fade == nil || !*cfg.Style.Fade {
		t.Fatalf("fade should default on")
	}
	if cfg.Quota.Tier != "free" {
		t.Fatalf("quota default wrong: %+v", cfg.Quota)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captool.yaml")
	body := `
windows:
  seconds: 45
  max_concurrent: 5
scenes:
  max_line_chars: 32
style:
  preset: bold
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Windows.Seconds != 45 || cfg.Windows.MaxConcurrent != 5 {
		t.Fatalf("overrides not applied: %+v", cfg.Windows)
	}
	if cfg.Scenes.MaxLineChars != 32 {
		t.Fatalf("scene override not applied: %+v", cfg.Scenes)
	}
	if cfg.Style.Preset != "bold" {
		t.Fatalf("style override not applied: %+v", cfg.Style)
	}
	// Untouched fields still default.
	if cfg.Windows.OverlapSeconds != 2 {
		t.Fatalf("default lost: %+v", cfg.Windows)
	}
}

func TestLoad_RejectsBadWindowConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captool.yaml")
	body := `
windows:
  seconds: 10
  overlap_seconds: 10
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}
