package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// TargetSampleRate is the rate the recognizer expects.
const TargetSampleRate = 16000

type Config struct {
	DurationSecs int           `json:"duration_secs"`
	Language     string        `json:"language"`
	LogLevel     string        `json:"log_level"`
	Hotkey       string        `json:"hotkey"`
	HotkeyDarwin string        `json:"hotkey_darwin"`
	Audio        AudioConfig   `json:"audio"`
	Whisper      WhisperConfig `json:"whisper"`
	OCR          OCRConfig     `json:"ocr"`
	Assist       AssistConfig  `json:"assist"`
	Chain        ChainConfig   `json:"chain"`
	Inject       InjectConfig  `json:"inject"`

	path string // file this config was loaded from
}

type AudioConfig struct {
	Encoding    string `json:"encoding"`     // "auto", "int16", "uint16", "float32"
	MaxChannels int    `json:"max_channels"` // 0 keeps every input channel
}

type WhisperConfig struct {
	Model     string `json:"model"`      // "base.en", "small", etc.
	ModelPath string `json:"model_path"` // overrides the models directory lookup
	Threads   int    `json:"threads"`
}

type OCRConfig struct {
	TesseractPath string `json:"tesseract_path"`
	OutputDir     string `json:"output_dir"`
}

type AssistConfig struct {
	APIKey         string `json:"-"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type ChainConfig struct {
	Enabled bool   `json:"enabled"`
	Node    string `json:"node"`
	Script  string `json:"script"`
}

type InjectConfig struct {
	CopyResponse bool `json:"copy_response"`
	PreferPaste  bool `json:"prefer_paste"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DurationSecs: 5,
		Language:     "en",
		LogLevel:     "info",
		Hotkey:       "Ctrl+Shift+W",
		HotkeyDarwin: "Ctrl+Shift+W",
		Audio: AudioConfig{
			Encoding:    "auto",
			MaxChannels: 2,
		},
		Whisper: WhisperConfig{
			Model:   "base.en",
			Threads: 0, // Auto-detect
		},
		OCR: OCRConfig{
			OutputDir: "out",
		},
		Assist: AssistConfig{
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 30,
		},
		Chain: ChainConfig{
			Node:   "node",
			Script: "postMemo.js",
		},
		Inject: InjectConfig{
			CopyResponse: true,
			PreferPaste:  false,
		},
	}
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config at path over the defaults. A missing file is
// not an error. Environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// readFile returns defaults overlaid with the file at path, without env.
func readFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Assist.APIKey = key
	}
	if p := os.Getenv("TESSERACT_PATH"); p != "" {
		c.OCR.TesseractPath = p
	}
}

// Validate checks values a capture run depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.DurationSecs <= 0 {
		errs = append(errs, fmt.Errorf("duration must be a positive number of seconds, got %d", c.DurationSecs))
	}
	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, errors.New("language must not be empty"))
	}
	switch strings.ToLower(c.Audio.Encoding) {
	case "", "auto", "int16", "uint16", "float32":
	default:
		errs = append(errs, fmt.Errorf("unknown audio encoding %q", c.Audio.Encoding))
	}
	if c.Audio.MaxChannels < 0 {
		errs = append(errs, fmt.Errorf("max_channels must not be negative, got %d", c.Audio.MaxChannels))
	}
	if c.Whisper.Model == "" && c.Whisper.ModelPath == "" {
		errs = append(errs, errors.New("whisper model or model_path is required"))
	}
	return errors.Join(errs...)
}

// Path returns the file the config was loaded from, or the platform
// default.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return configPath()
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.Path()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveInject writes c.Inject into the config file and leaves every other
// value on disk untouched, so flag and env overrides held in c are never
// persisted.
func (c *Config) SaveInject() error {
	disk, err := readFile(c.Path())
	if err != nil {
		return err
	}
	disk.Inject = c.Inject
	return disk.Save()
}

// PlatformHotkey returns the appropriate hotkey for the current platform
func (c *Config) PlatformHotkey() string {
	if runtime.GOOS == "darwin" && c.HotkeyDarwin != "" {
		return c.HotkeyDarwin
	}
	return c.Hotkey
}

// ModelFile returns the whisper model file to load.
func (c *Config) ModelFile() string {
	if c.Whisper.ModelPath != "" {
		return c.Whisper.ModelPath
	}
	return filepath.Join(ModelsPath(), "ggml-"+c.Whisper.Model+".bin")
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "whispr", "config.json")
}

// ModelsPath returns the platform-specific models directory path
func ModelsPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "whispr", "models")
}
