package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "http://localhost:8000" {
		t.Fatalf("source default = %q", cfg.Source)
	}
	if cfg.Backend != "" || cfg.Autoplay || cfg.Sound {
		t.Fatal("unexpected non-default values")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log_level default = %q", cfg.LogLevel)
	}
}

func TestLoadReadsTOML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "abyss.toml")
	body := `
source = "/data/tiles"
backend = "http://localhost:5000"
dataset = "mandelbrot"
autoplay = true
log_level = "debug"
`
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "/data/tiles" {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Backend != "http://localhost:5000" || cfg.Dataset != "mandelbrot" {
		t.Fatal("backend/dataset not read")
	}
	if !cfg.Autoplay {
		t.Fatal("autoplay not read")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("explicit missing file did not error")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ABYSS_DATASET", "julia")
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset != "julia" {
		t.Fatalf("dataset = %q, want env override", cfg.Dataset)
	}
}
