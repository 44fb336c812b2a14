package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Hotkeys HotkeysConfig `toml:"hotkeys"`
	Replay  ReplayConfig  `toml:"replay"`
	Web     WebConfig     `toml:"web"`
	DataDir string        `toml:"data_dir"`
}

type HotkeysConfig struct {
	RecordToggle string `toml:"record_toggle"`
	ReplayToggle string `toml:"replay_toggle"`
}

type ReplayConfig struct {
	Speed float64 `toml:"speed"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Hotkeys: HotkeysConfig{
			RecordToggle: "ctrl+shift+r",
			ReplayToggle: "ctrl+shift+p",
		},
		Replay: ReplayConfig{
			Speed: 1.0,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8971,
		},
		DataDir: "",
	}
}

func configDir() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
	}
	return filepath.Join(appData, "macrorec")
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir := configDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "config.toml"), nil
}

// ResolveDataDir returns the directory recordings and the database live
// in, creating it if needed. An empty DataDir falls back to the config
// directory.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		dir = configDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Load loads the configuration from the TOML file
// If the file doesn't exist, it creates it with default values
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Replay.Speed <= 0 {
		return nil, fmt.Errorf("replay speed must be positive, got %v", cfg.Replay.Speed)
	}

	return cfg, nil
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// KeyCombo represents a parsed keyboard combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string
}

// ParseHotkey parses a hotkey combo string like "ctrl+shift+r"
func ParseHotkey(combo string) (KeyCombo, error) {
	var kc KeyCombo
	parts := strings.Split(strings.ToLower(combo), "+")

	if len(parts) == 0 {
		return kc, fmt.Errorf("empty hotkey combo")
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)

		// Check if this part is a modifier
		isModifier := false
		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
			isModifier = true
		case "shift":
			kc.Shift = true
			isModifier = true
		case "alt":
			kc.Alt = true
			isModifier = true
		case "win", "windows":
			kc.Win = true
			isModifier = true
		}

		// If it's not a modifier and it's the last part, it's the key
		if !isModifier {
			if i == len(parts)-1 {
				kc.Key = part
			} else {
				return kc, fmt.Errorf("unknown modifier: %s", part)
			}
		}
	}

	if kc.Key == "" {
		return kc, fmt.Errorf("hotkey combo %q has no key", combo)
	}
	if !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win {
		return kc, fmt.Errorf("hotkey combo %q has no modifiers", combo)
	}

	return kc, nil
}
