package inspection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable weights and thresholds of the scoring and decision
// engines. Values are inferred production defaults; override via yaml.
type Config struct {
	// CriticalWeight and OptionalWeight control how much each component class
	// contributes to the weighted overall score.
	CriticalWeight float64 `yaml:"critical_weight"`
	OptionalWeight float64 `yaml:"optional_weight"`

	// LowConfidence is the cutoff under which an undetected critical component
	// counts as confidently absent for the per-frame status.
	LowConfidence float64 `yaml:"low_confidence_threshold"`

	// DetectionRate is the fraction of frames a component must be seen in to
	// consolidate as DETECTED.
	DetectionRate float64 `yaml:"detection_rate_threshold"`

	// Approval is the minimum overall score for LIBERAR_LACRE.
	Approval float64 `yaml:"approval_threshold"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CriticalWeight: 1.0,
		OptionalWeight: 0.5,
		LowConfidence:  0.3,
		DetectionRate:  0.5,
		Approval:       0.75,
	}
}

// LoadConfig reads a yaml threshold file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks threshold ranges.
func (c Config) Validate() error {
	if c.CriticalWeight <= 0 || c.OptionalWeight < 0 {
		return fmt.Errorf("invalid weights: critical=%v optional=%v", c.CriticalWeight, c.OptionalWeight)
	}
	for name, v := range map[string]float64{
		"low_confidence_threshold": c.LowConfidence,
		"detection_rate_threshold": c.DetectionRate,
		"approval_threshold":       c.Approval,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	return nil
}
