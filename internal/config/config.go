package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"goab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Bayes     BayesConfig     `yaml:"bayes"`
	Generator GeneratorConfig `yaml:"generator"`
	Advanced  AdvancedConfig  `yaml:"advanced"`
}

// AnalysisConfig holds the thresholds and labels for frequentist runs
type AnalysisConfig struct {
	Alpha float64 `yaml:"alpha"`
	Power float64 `yaml:"power"`
	MDE   float64 `yaml:"mde"`

	ControlLabel   string `yaml:"control_label"`
	TreatmentLabel string `yaml:"treatment_label"`
	GroupField     string `yaml:"group_field"`
	OutcomeField   string `yaml:"outcome_field"`

	MinSampleSize         int   `yaml:"min_sample_size"`
	RecommendedSampleSize int   `yaml:"recommended_sample_size"`
	SegmentParallelism    int64 `yaml:"segment_parallelism"`
}

// BayesConfig holds Monte Carlo settings
type BayesConfig struct {
	Simulations int   `yaml:"simulations"`
	Seed        int64 `yaml:"seed"`
}

// GeneratorConfig holds synthetic dataset settings
type GeneratorConfig struct {
	Users        int    `yaml:"users"`
	Seed         int64  `yaml:"seed"`
	OutputFormat string `yaml:"output_format"`
}

// AdvancedConfig lists features that are recognized but not implemented.
// Enabling any of them is a configuration error, not a silent no-op.
type AdvancedConfig struct {
	MultipleTestingCorrection bool `yaml:"multiple_testing_correction"`
	SequentialTesting         bool `yaml:"sequential_testing"`
}

// Default returns the built-in configuration before any overlay or
// environment override is applied.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Alpha:                 0.05,
			Power:                 0.80,
			MDE:                   0.10,
			ControlLabel:          "A",
			TreatmentLabel:        "B",
			GroupField:            "group",
			OutcomeField:          "converted",
			MinSampleSize:         100,
			RecommendedSampleSize: 1000,
			SegmentParallelism:    4,
		},
		Bayes: BayesConfig{
			Simulations: 100000,
			Seed:        42,
		},
		Generator: GeneratorConfig{
			Users:        2000,
			Seed:         42,
			OutputFormat: "csv",
		},
	}
}

// Load assembles the configuration: defaults, then the optional YAML overlay
// named by GOAB_CONFIG, then environment variables, then validation.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("GOAB_CONFIG"); path != "" {
		if err := applyOverlay(config, path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration overlay")
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func applyOverlay(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("cannot read overlay file %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("cannot parse overlay file %s: %v", path, err))
	}
	return nil
}

func applyEnv(config *Config) {
	config.Analysis.Alpha = getEnvFloatOrDefault("ALPHA", config.Analysis.Alpha)
	config.Analysis.Power = getEnvFloatOrDefault("POWER", config.Analysis.Power)
	config.Analysis.MDE = getEnvFloatOrDefault("MDE", config.Analysis.MDE)
	config.Analysis.ControlLabel = getEnvOrDefault("CONTROL_LABEL", config.Analysis.ControlLabel)
	config.Analysis.TreatmentLabel = getEnvOrDefault("TREATMENT_LABEL", config.Analysis.TreatmentLabel)
	config.Analysis.GroupField = getEnvOrDefault("GROUP_FIELD", config.Analysis.GroupField)
	config.Analysis.OutcomeField = getEnvOrDefault("OUTCOME_FIELD", config.Analysis.OutcomeField)
	config.Analysis.MinSampleSize = getEnvIntOrDefault("MIN_SAMPLE_SIZE", config.Analysis.MinSampleSize)
	config.Analysis.RecommendedSampleSize = getEnvIntOrDefault("RECOMMENDED_SAMPLE_SIZE", config.Analysis.RecommendedSampleSize)
	config.Analysis.SegmentParallelism = int64(getEnvIntOrDefault("SEGMENT_PARALLELISM", int(config.Analysis.SegmentParallelism)))

	config.Bayes.Simulations = getEnvIntOrDefault("BAYES_SIMULATIONS", config.Bayes.Simulations)
	config.Bayes.Seed = int64(getEnvIntOrDefault("BAYES_SEED", int(config.Bayes.Seed)))

	config.Generator.Users = getEnvIntOrDefault("GENERATOR_USERS", config.Generator.Users)
	config.Generator.Seed = int64(getEnvIntOrDefault("GENERATOR_SEED", int(config.Generator.Seed)))
	config.Generator.OutputFormat = getEnvOrDefault("GENERATOR_FORMAT", config.Generator.OutputFormat)

	config.Advanced.MultipleTestingCorrection = getEnvBoolOrDefault("MULTIPLE_TESTING_CORRECTION", config.Advanced.MultipleTestingCorrection)
	config.Advanced.SequentialTesting = getEnvBoolOrDefault("SEQUENTIAL_TESTING", config.Advanced.SequentialTesting)
}

func validateConfig(config *Config) error {
	a := config.Analysis
	if a.Alpha <= 0 || a.Alpha >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("ALPHA must be in (0, 1), got %f", a.Alpha))
	}
	if a.Power <= 0 || a.Power >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("POWER must be in (0, 1), got %f", a.Power))
	}
	if a.MDE == 0 {
		return errors.ConfigInvalid("MDE must be non-zero")
	}
	if a.ControlLabel == "" || a.TreatmentLabel == "" {
		return errors.ConfigInvalid("group labels must be non-empty")
	}
	if a.ControlLabel == a.TreatmentLabel {
		return errors.ConfigInvalid(fmt.Sprintf("control and treatment labels must differ, both are %q", a.ControlLabel))
	}
	if a.GroupField == "" || a.OutcomeField == "" {
		return errors.ConfigInvalid("GROUP_FIELD and OUTCOME_FIELD must be non-empty")
	}
	if a.MinSampleSize < 0 || a.RecommendedSampleSize < 0 {
		return errors.ConfigInvalid("sample size thresholds must be non-negative")
	}
	if a.SegmentParallelism <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("SEGMENT_PARALLELISM must be positive, got %d", a.SegmentParallelism))
	}

	if config.Bayes.Simulations <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("BAYES_SIMULATIONS must be positive, got %d", config.Bayes.Simulations))
	}

	if config.Generator.Users <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("GENERATOR_USERS must be positive, got %d", config.Generator.Users))
	}
	switch config.Generator.OutputFormat {
	case "csv", "xlsx":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GENERATOR_FORMAT must be csv or xlsx, got %q", config.Generator.OutputFormat))
	}

	if config.Advanced.MultipleTestingCorrection {
		return errors.ConfigInvalid("multiple testing correction is not supported")
	}
	if config.Advanced.SequentialTesting {
		return errors.ConfigInvalid("sequential testing is not supported")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
