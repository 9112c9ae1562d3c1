package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PlaybackPipe != DefaultPlaybackPipe {
		t.Errorf("PlaybackPipe = %q, want %q", cfg.PlaybackPipe, DefaultPlaybackPipe)
	}
	if !cfg.AutoPlay {
		t.Error("AutoPlay should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default keybinds should validate: %v", err)
	}
	for _, a := range Actions() {
		if len(cfg.Keybinds[a]) == 0 {
			t.Errorf("action %s has no default keys", a)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.ToneDir != "tones" {
		t.Errorf("ToneDir = %q, want defaults", cfg.ToneDir)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
tone_dir = "/data/tones"
auto_play = false

[keybinds]
inc = ["w"]
dec = ["x"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.ToneDir != "/data/tones" {
		t.Errorf("ToneDir = %q", cfg.ToneDir)
	}
	if cfg.AutoPlay {
		t.Error("AutoPlay should be false")
	}
	if cfg.PlaybackPipe != DefaultPlaybackPipe {
		t.Errorf("PlaybackPipe = %q, want default", cfg.PlaybackPipe)
	}
	if got := cfg.Keybinds[ActionInc]; len(got) != 1 || got[0] != "w" {
		t.Errorf("inc keys = %v, want [w]", got)
	}
	if got := cfg.Keybinds[ActionUp]; len(got) != 2 {
		t.Errorf("up keys = %v, want defaults", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad toml", "tone_dir = ", "parse"},
		{"unknown action", "[keybinds]\nfly = [\"f\"]\n", "unknown keybind"},
		{"empty keys", "[keybinds]\nplay = []\n", "no keys"},
		{"duplicate key", "[keybinds]\nplay = [\"j\"]\n", "bound to both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadFile() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.ToneDir = "saved"
	cfg.Keybinds[ActionPlay] = []string{"enter"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if back.ToneDir != "saved" {
		t.Errorf("ToneDir = %q, want saved", back.ToneDir)
	}
	if got := back.Keybinds[ActionPlay]; len(got) != 1 || got[0] != "enter" {
		t.Errorf("play keys = %v, want [enter]", got)
	}
}
