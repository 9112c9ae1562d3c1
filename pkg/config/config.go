// Package config loads editor settings and keybind remapping from a TOML file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Action names an editor command that keys can be bound to
type Action string

const (
	ActionUp    Action = "up"
	ActionDown  Action = "down"
	ActionLeft  Action = "left"
	ActionRight Action = "right"
	ActionInc   Action = "inc"
	ActionDec   Action = "dec"
	ActionInc10 Action = "inc10"
	ActionDec10 Action = "dec10"
	ActionMax   Action = "max"
	ActionMin   Action = "min"
	ActionPlay  Action = "play"
	ActionSave  Action = "save"
	ActionOpen  Action = "open"
	ActionHelp  Action = "help"
	ActionQuit  Action = "quit"
)

// Config is the main configuration structure
type Config struct {
	ToneDir      string              `toml:"tone_dir"`
	PlaybackPipe string              `toml:"playback_pipe"`
	AutoPlay     bool                `toml:"auto_play"`
	Keybinds     map[Action][]string `toml:"keybinds"`
}

// fileConfig mirrors Config with pointers so absent keys keep their defaults
type fileConfig struct {
	ToneDir      *string             `toml:"tone_dir"`
	PlaybackPipe *string             `toml:"playback_pipe"`
	AutoPlay     *bool               `toml:"auto_play"`
	Keybinds     map[string][]string `toml:"keybinds"`
}

// DefaultPlaybackPipe is where the playback server listens by default
const DefaultPlaybackPipe = "/tmp/ym2151-log-play-server"

var defaultKeybinds = map[Action][]string{
	ActionUp:    {"up", "k"},
	ActionDown:  {"down", "j"},
	ActionLeft:  {"left", "h"},
	ActionRight: {"right", "l"},
	ActionInc:   {"+", "=", "."},
	ActionDec:   {"-", ","},
	ActionInc10: {"pgup", "]"},
	ActionDec10: {"pgdown", "["},
	ActionMax:   {"home", ">"},
	ActionMin:   {"end", "<"},
	ActionPlay:  {"p", " "},
	ActionSave:  {"s", "ctrl+s"},
	ActionOpen:  {"o"},
	ActionHelp:  {"?"},
	ActionQuit:  {"q", "esc", "ctrl+c"},
}

// Actions lists every bindable action in a stable order
func Actions() []Action {
	actions := make([]Action, 0, len(defaultKeybinds))
	for a := range defaultKeybinds {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	keybinds := make(map[Action][]string, len(defaultKeybinds))
	for a, keys := range defaultKeybinds {
		keybinds[a] = append([]string(nil), keys...)
	}
	return &Config{
		ToneDir:      "tones",
		PlaybackPipe: DefaultPlaybackPipe,
		AutoPlay:     true,
		Keybinds:     keybinds,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ym2151tone"), nil
}

// ConfigPath returns the full path to config.toml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file on top of the defaults. A missing file yields
// the defaults; a keybind entry replaces the default keys of that action only.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.ToneDir != nil {
		cfg.ToneDir = *fc.ToneDir
	}
	if fc.PlaybackPipe != nil {
		cfg.PlaybackPipe = *fc.PlaybackPipe
	}
	if fc.AutoPlay != nil {
		cfg.AutoPlay = *fc.AutoPlay
	}
	for name, keys := range fc.Keybinds {
		a := Action(name)
		if _, ok := defaultKeybinds[a]; !ok {
			return nil, fmt.Errorf("unknown keybind action %q", name)
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("keybind %q has no keys", name)
		}
		cfg.Keybinds[a] = keys
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects a key bound to two actions
func (c *Config) Validate() error {
	owner := make(map[string]Action)
	for _, a := range Actions() {
		for _, k := range c.Keybinds[a] {
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("key %q bound to both %s and %s", k, prev, a)
			}
			owner[k] = a
		}
	}
	return nil
}

// Save writes the config to path, creating the directory if needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
