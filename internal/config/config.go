package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the optional file-based settings. Command-line flags
// override these; these override the built-in defaults.
type Config struct {
	OutputDir string        `yaml:"output_dir"`
	Jobs      int           `yaml:"jobs"`
	FFmpeg    FFmpegConfig  `yaml:"ffmpeg"`
	Whisper   WhisperConfig `yaml:"whisper"`
}

// FFmpegConfig configures the audio concatenation collaborator.
type FFmpegConfig struct {
	Binary string `yaml:"binary"`
}

// WhisperConfig configures the speech-to-text collaborator.
type WhisperConfig struct {
	Binary   string `yaml:"binary"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	BeamSize int    `yaml:"beam_size"`
	Prompt   string `yaml:"prompt"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		OutputDir: "archives",
		Jobs:      1,
		FFmpeg: FFmpegConfig{
			Binary: "ffmpeg",
		},
		Whisper: WhisperConfig{
			Binary:   "whisper-cli",
			Model:    "models/ggml-large-v3.bin",
			Language: "en",
			BeamSize: 5,
			Prompt:   "you are listening to police scanner radio traffic",
		},
	}
}

// Load reads and parses the configuration file. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for values no run could work with.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.FFmpeg.Binary == "" {
		return fmt.Errorf("ffmpeg binary must not be empty")
	}
	if c.Whisper.Binary == "" {
		return fmt.Errorf("whisper binary must not be empty")
	}
	if c.Whisper.Model == "" {
		return fmt.Errorf("whisper model must not be empty")
	}
	if c.Whisper.BeamSize < 1 {
		return fmt.Errorf("whisper beam_size must be at least 1, got %d", c.Whisper.BeamSize)
	}
	return nil
}
