package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := Default()
	if cfg.SpecsDir != def.SpecsDir || cfg.TemplatesDir != def.TemplatesDir {
		t.Errorf("unexpected dirs %+v", cfg)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_SpecflowIsAFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".specflow"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load should fall back to defaults, got %v", err)
	}
	if cfg.SpecsDir != Default().SpecsDir {
		t.Errorf("SpecsDir = %q", cfg.SpecsDir)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "specs_dir: docs/specs\nlog:\n  level: debug\nwatch:\n  debounce: 1s\n")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpecsDir != "docs/specs" {
		t.Errorf("SpecsDir = %q", cfg.SpecsDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("unset keys should keep defaults, Log.Format = %q", cfg.Log.Format)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "log:\n  level: info\n")
	t.Setenv("SPECFLOW_LOG_LEVEL", "error")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want env override", cfg.Log.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "specs_dir: [unterminated\n")

	if _, err := Load(root); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "specs_dir: \"  \"\n")

	_, err := Load(root)
	if err == nil || !strings.Contains(err.Error(), "specs_dir") {
		t.Errorf("expected specs_dir validation error, got %v", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.SpecsDir = "specs"
	cfg.Watch.Debounce = 750 * time.Millisecond

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(Path(root))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "debounce: 750ms") {
		t.Errorf("expected human-readable debounce, got:\n%s", data)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SpecsDir != "specs" || loaded.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
