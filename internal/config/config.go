package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Media    MediaConfig    `yaml:"media"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	Windows  WindowsConfig  `yaml:"windows"`
	Scenes   ScenesConfig   `yaml:"scenes"`
	Style    StyleConfig    `yaml:"style"`
	Quota    QuotaConfig    `yaml:"quota"`
	Paths    PathsConfig    `yaml:"paths"`
}

type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
}

type WindowsConfig struct {
	Seconds          float64 `yaml:"seconds"`
	OverlapSeconds   float64 `yaml:"overlap_seconds"`
	MaxConcurrent    int     `yaml:"max_concurrent"`
	MaxRetries       int     `yaml:"max_retries"`
	ToleratedMissing int     `yaml:"tolerated_missing"`
}

type ScenesConfig struct {
	MinSeconds   float64 `yaml:"min_seconds"`
	MaxSeconds   float64 `yaml:"max_seconds"`
	GapThreshold float64 `yaml:"gap_threshold"`
	MaxLineChars int     `yaml:"max_line_chars"`
}

type StyleConfig struct {
	Preset   string `yaml:"preset"`
	Position string `yaml:"position"`
	// Fade is a pointer so an explicit "fade: false" survives defaulting.
	Fade           *bool   `yaml:"fade"`
	FadeInSeconds  float64 `yaml:"fade_in_seconds"`
	FadeOutSeconds float64 `yaml:"fade_out_seconds"`
}

type QuotaConfig struct {
	Tier string `yaml:"tier"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Cache  string `yaml:"cache"`
	Watch  string `yaml:"watch"`
}

// Load reads a YAML config file and applies defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Windows.Seconds < 0 || c.Windows.OverlapSeconds < 0 {
		return fmt.Errorf("windows.seconds and windows.overlap_seconds must be >= 0")
	}
	if c.Windows.Seconds > 0 && c.Windows.OverlapSeconds >= c.Windows.Seconds {
		return fmt.Errorf("windows.overlap_seconds must be smaller than windows.seconds")
	}

	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = "ffmpeg"
	}
	if c.Media.FFprobePath == "" {
		c.Media.FFprobePath = "ffprobe"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = ".cache/bin/whisper.cpp"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = ".cache/models/ggml-base.bin"
	}
	if c.Windows.Seconds == 0 {
		c.Windows.Seconds = 30
	}
	if c.Windows.OverlapSeconds == 0 {
		c.Windows.OverlapSeconds = 2
	}
	if c.Windows.MaxConcurrent == 0 {
		c.Windows.MaxConcurrent = 3
	}
	if c.Windows.MaxRetries == 0 {
		c.Windows.MaxRetries = 2
	}
	if c.Scenes.MinSeconds == 0 {
		c.Scenes.MinSeconds = 1
	}
	if c.Scenes.MaxSeconds == 0 {
		c.Scenes.MaxSeconds = 6
	}
	if c.Scenes.GapThreshold == 0 {
		c.Scenes.GapThreshold = 2
	}
	if c.Scenes.MaxLineChars == 0 {
		c.Scenes.MaxLineChars = 42
	}
	if c.Scenes.MinSeconds > c.Scenes.MaxSeconds {
		return fmt.Errorf("scenes.min_seconds must be <= scenes.max_seconds")
	}
	if c.Style.Preset == "" {
		c.Style.Preset = "classic"
	}
	if c.Style.Position == "" {
		c.Style.Position = "bottom"
	}
	if c.Style.Fade == nil {
		on := true
		c.Style.Fade = &on
	}
	if c.Style.FadeInSeconds == 0 {
		c.Style.FadeInSeconds = 0.25
	}
	if c.Style.FadeOutSeconds == 0 {
		c.Style.FadeOutSeconds = 0.25
	}
	if c.Quota.Tier == "" {
		c.Quota.Tier = "free"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "out"
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = ".cache"
	}
	return nil
}
