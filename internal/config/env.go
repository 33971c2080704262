package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/diogo/localchat/internal/models"
)

// Environment variables that override the config file
const (
	EnvBaseURL = "LOCALCHAT_BASE_URL"
	EnvModel   = "LOCALCHAT_MODEL"
)

// LoadDotEnv loads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides cfg with the LOCALCHAT_* environment variables.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.DefaultModel = models.ModelFromName(v).ID
	}
	return cfg
}

// Load reads the config file and applies environment overrides.
// The returned config is usable even when err is non-nil.
func Load() (Config, error) {
	cfg, err := LoadConfig()
	return ApplyEnv(cfg), err
}
