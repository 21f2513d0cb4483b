package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lacretech/vistoria/internal/inspection"
)

// Config holds environment-driven settings. Thresholds load separately from
// the yaml file named by VISTORIA_THRESHOLDS.
type Config struct {
	DatabaseURL    string
	Detector       string
	OutputDir      string
	MaxWorkers     int
	ThresholdsPath string
}

// Load reads the environment, honoring a .env file when present.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is fine.
	_ = godotenv.Load()

	workers, err := getEnvInt("VISTORIA_MAX_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Detector:       getEnv("VISTORIA_DETECTOR", "gcv"),
		OutputDir:      getEnv("VISTORIA_OUTPUT_DIR", "inspections"),
		MaxWorkers:     workers,
		ThresholdsPath: os.Getenv("VISTORIA_THRESHOLDS"),
	}
	return cfg, nil
}

// Thresholds returns the inspection thresholds, from yaml when configured.
func (c *Config) Thresholds() (inspection.Config, error) {
	if c.ThresholdsPath == "" {
		return inspection.DefaultConfig(), nil
	}
	return inspection.LoadConfig(c.ThresholdsPath)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
