package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		name    string
		combo   string
		want    KeyCombo
		wantErr bool
	}{
		{
			name:  "ctrl shift r",
			combo: "ctrl+shift+r",
			want:  KeyCombo{Ctrl: true, Shift: true, Key: "r"},
		},
		{
			name:  "alt f5",
			combo: "alt+f5",
			want:  KeyCombo{Alt: true, Key: "f5"},
		},
		{
			name:  "case and spacing",
			combo: "CTRL + Shift + P",
			want:  KeyCombo{Ctrl: true, Shift: true, Key: "p"},
		},
		{
			name:  "win key",
			combo: "win+m",
			want:  KeyCombo{Win: true, Key: "m"},
		},
		{
			name:    "no modifiers",
			combo:   "r",
			wantErr: true,
		},
		{
			name:    "modifier only",
			combo:   "ctrl+shift",
			wantErr: true,
		},
		{
			name:    "key in the middle",
			combo:   "ctrl+r+shift",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kc, err := ParseHotkey(tt.combo)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kc)
		})
	}
}

func TestLoad_CreatesDefaults(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift+r", cfg.Hotkeys.RecordToggle)
	assert.Equal(t, "ctrl+shift+p", cfg.Hotkeys.ReplayToggle)
	assert.Equal(t, 1.0, cfg.Replay.Speed)
	assert.True(t, cfg.Web.Enabled)

	// The default file is written on first load.
	path, err := ConfigPath()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoad_ReadsExisting(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPDATA", dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "macrorec"), 0755))
	content := `
data_dir = "C:\\macros"

[hotkeys]
record_toggle = "ctrl+alt+r"

[replay]
speed = 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macrorec", "config.toml"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ctrl+alt+r", cfg.Hotkeys.RecordToggle)
	// Unset keys keep their defaults.
	assert.Equal(t, "ctrl+shift+p", cfg.Hotkeys.ReplayToggle)
	assert.Equal(t, 2.5, cfg.Replay.Speed)
	assert.Equal(t, `C:\macros`, cfg.DataDir)
}

func TestLoad_RejectsNonPositiveSpeed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPDATA", dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "macrorec"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "macrorec", "config.toml"),
		[]byte("[replay]\nspeed = -1.0\n"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveDataDir(t *testing.T) {
	appData := t.TempDir()
	t.Setenv("APPDATA", appData)

	cfg := defaultConfig()
	dir, err := cfg.ResolveDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(appData, "macrorec"), dir)

	override := filepath.Join(t.TempDir(), "macros")
	cfg.DataDir = override
	dir, err = cfg.ResolveDataDir()
	require.NoError(t, err)
	assert.Equal(t, override, dir)
	_, err = os.Stat(override)
	assert.NoError(t, err, "data dir is created on resolve")
}
