package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TESSERACT_PATH", "")

	path := filepath.Join(t.TempDir(), "nope.json")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	want := Default()
	want.path = path
	assert.Equal(t, want, cfg)
	assert.Equal(t, path, cfg.Path())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TESSERACT_PATH", "")

	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"duration_secs": 3, "language": "hr", "audio": {"encoding": "int16"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.DurationSecs)
	assert.Equal(t, "hr", cfg.Language)
	assert.Equal(t, "int16", cfg.Audio.Encoding)
	assert.Equal(t, 2, cfg.Audio.MaxChannels, "unset fields keep their defaults")
	assert.Equal(t, "base.en", cfg.Whisper.Model)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("TESSERACT_PATH", "/opt/tess")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Assist.APIKey)
	assert.Equal(t, "/opt/tess", cfg.OCR.TesseractPath)
}

func TestLoadFromEnvironmentBeatsFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TESSERACT_PATH", "/from/env")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ocr":{"tesseract_path":"/from/file"}}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.OCR.TesseractPath)
}

func TestSaveWritesToLoadedPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.json")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Language = "de"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "de", reloaded.Language)

	_, err = os.Stat(configPath())
	assert.True(t, os.IsNotExist(err), "platform config must not be written")
}

func TestSaveInjectKeepsOverridesOffDisk(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TESSERACT_PATH", "/from/env")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"language":"hr"}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	// What --duration 42 and --model small.en do, then a tray toggle.
	cfg.DurationSecs = 42
	cfg.Whisper.Model = "small.en"
	cfg.Inject.PreferPaste = true
	require.NoError(t, cfg.SaveInject())

	t.Setenv("TESSERACT_PATH", "")
	disk, err := LoadFrom(path)
	require.NoError(t, err)

	assert.True(t, disk.Inject.PreferPaste)
	assert.Equal(t, "hr", disk.Language)
	assert.Equal(t, Default().DurationSecs, disk.DurationSecs)
	assert.Equal(t, Default().Whisper.Model, disk.Whisper.Model)
	assert.Empty(t, disk.OCR.TesseractPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/from/env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero duration", func(c *Config) { c.DurationSecs = 0 }, false},
		{"negative duration", func(c *Config) { c.DurationSecs = -2 }, false},
		{"empty language", func(c *Config) { c.Language = " " }, false},
		{"bad encoding", func(c *Config) { c.Audio.Encoding = "int24" }, false},
		{"uint16 encoding", func(c *Config) { c.Audio.Encoding = "uint16" }, true},
		{"negative channels", func(c *Config) { c.Audio.MaxChannels = -1 }, false},
		{"no model", func(c *Config) { c.Whisper.Model = "" }, false},
		{"explicit model path", func(c *Config) { c.Whisper.Model = ""; c.Whisper.ModelPath = "/m.bin" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestModelFile(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ggml-base.en.bin", filepath.Base(cfg.ModelFile()))

	cfg.Whisper.ModelPath = "./models/custom.bin"
	assert.Equal(t, "./models/custom.bin", cfg.ModelFile())
}
