package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string `yaml:"addr"`
	TempDir     string `yaml:"temp_dir"`
	MaxUpload   string `yaml:"max_upload"`
	FFProbePath string `yaml:"ffprobe_path"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	PreviewSize int    `yaml:"preview_size"`
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`

	maxUploadBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		Addr:        "127.0.0.1:7070",
		TempDir:     "",
		MaxUpload:   "512 MB",
		FFProbePath: "ffprobe",
		FFmpegPath:  "ffmpeg",
		PreviewSize: 320,
		LogLevel:    "info",
		LogJSON:     false,
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return &ValidationError{Field: "addr", Message: "listen address is required"}
	}
	n, err := humanize.ParseBytes(c.MaxUpload)
	if err != nil || n == 0 {
		return &ValidationError{Field: "max_upload", Message: "must be a positive size such as \"512 MB\""}
	}
	c.maxUploadBytes = int64(n)
	if c.PreviewSize < 0 {
		return &ValidationError{Field: "preview_size", Message: "must not be negative"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return &ValidationError{Field: "log_level", Message: err.Error()}
	}
	if c.FFProbePath == "" {
		c.FFProbePath = "ffprobe"
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	return nil
}

// MaxUploadBytes is the parsed upload limit. Valid after Validate.
func (c *Config) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
