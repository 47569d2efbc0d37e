package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Tick.Period != 50*time.Millisecond {
		t.Errorf("expected 50ms tick, got %v", cfg.Tick.Period)
	}
	wp := cfg.WorldParams()
	if wp.Width != 120 || wp.Height != 120 {
		t.Errorf("expected 120x120 world, got %vx%v", wp.Width, wp.Height)
	}
	if wp.ViewportWidth != 60 || wp.ViewportHeight != 60 {
		t.Errorf("expected 60x60 viewport, got %vx%v", wp.ViewportWidth, wp.ViewportHeight)
	}
	if wp.CellSize() != 60 {
		t.Errorf("expected cell size 60, got %v", wp.CellSize())
	}
	if wp.InitialFood != 40 || wp.LeaderboardSize != 10 || wp.MaxNameLen != 15 {
		t.Errorf("unexpected world params %+v", wp)
	}
}

func TestLoadFileOverridesOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := []byte("world:\n  width: 300\ntick:\n  period: 20ms\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.Width != 300 {
		t.Errorf("expected width 300, got %v", cfg.World.Width)
	}
	if cfg.World.Height != 120 {
		t.Errorf("height should keep its default, got %v", cfg.World.Height)
	}
	if cfg.Tick.Period != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %v", cfg.Tick.Period)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world:\n  speed: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for zero speed")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"ARENA_ADDR":       ":9999",
		"ARENA_STORE_PATH": "/tmp/arena.db",
	}
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected addr override, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Path != "/tmp/arena.db" {
		t.Errorf("expected store path override, got %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unset variables must not change fields, got level %q", cfg.Log.Level)
	}
}
