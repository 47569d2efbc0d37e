package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodarena/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.log")
	log, err := New(config.LogConfig{File: path, Level: "debug", MaxSizeMB: 1})
	if err != nil {
		t.Fatal(err)
	}
	log.Named("room").Infow("player joined", "id", "abc")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{"INFO", "room", "player joined", "abc"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
