// Package config loads application configuration from an optional YAML file
// overlaid by COACH_-prefixed environment variables.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/genai"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	Storage StorageConfig `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type GeminiConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type StorageConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory store;
	// history then does not survive a restart.
	Path string `koanf:"path"`
}

// Load reads configuration from path (if the file exists) and the
// environment. Environment variables use the COACH_ prefix with underscores
// for nesting, e.g. COACH_GEMINI__API_KEY.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider("COACH_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "COACH_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("gemini.model") {
		k.Set("gemini.model", genai.DefaultModel)
	}
	if !k.Exists("storage.path") {
		k.Set("storage.path", "./data/coach.db")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration required before any interview can begin.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return domain.ErrConfiguration("gemini.api_key is not set (COACH_GEMINI__API_KEY)")
	}
	return nil
}
