// Package cfg loads host configuration from a YAML file with environment
// variable overrides, falling back to environment-only configuration when
// no file is given.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved host configuration.
type Settings struct {
	ArtifactsPath    string
	DataPath         string
	DashboardURL     string
	DashboardTimeout time.Duration
	MetricsPort      int
	Alpha            float64
	ReferenceGroups  map[string]string
}

// ConfigFile mirrors the YAML layout.
type ConfigFile struct {
	Model struct {
		ArtifactsPath string `yaml:"artifactsPath"`
	} `yaml:"model"`

	Fairness struct {
		Alpha           float64           `yaml:"alpha"`
		ReferenceGroups map[string]string `yaml:"referenceGroups"`
	} `yaml:"fairness"`

	Dashboard struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"dashboard"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsPort int    `yaml:"metricsPort"`
	} `yaml:"system"`
}

// Load reads configuration from the file named by CONFIG_FILE, or from
// environment variables when unset.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("DASHBOARD_TIMEOUT", config.Dashboard.Timeout))
	if err != nil {
		timeout = 10 * time.Second
	}

	s := Settings{
		ArtifactsPath:    getEnvOrDefault("MODEL_ARTIFACTS_PATH", config.Model.ArtifactsPath),
		DataPath:         getEnvOrDefault("DATA_PATH", config.System.DataPath),
		DashboardURL:     getEnvOrDefault("DASHBOARD_URL", config.Dashboard.URL),
		DashboardTimeout: timeout,
		MetricsPort:      getEnvInt("METRICS_PORT", config.System.MetricsPort),
		Alpha:            getEnvFloat("FAIRNESS_ALPHA", config.Fairness.Alpha),
		ReferenceGroups:  config.Fairness.ReferenceGroups,
	}
	applyDefaults(&s)
	return s, s.Validate()
}

func loadFromEnv() (Settings, error) {
	timeout, err := time.ParseDuration(getEnvOrDefault("DASHBOARD_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	s := Settings{
		ArtifactsPath:    os.Getenv("MODEL_ARTIFACTS_PATH"),
		DataPath:         os.Getenv("DATA_PATH"),
		DashboardURL:     os.Getenv("DASHBOARD_URL"),
		DashboardTimeout: timeout,
		MetricsPort:      getEnvInt("METRICS_PORT", 0),
		Alpha:            getEnvFloat("FAIRNESS_ALPHA", 0),
	}
	applyDefaults(&s)
	return s, s.Validate()
}

func applyDefaults(s *Settings) {
	if s.Alpha == 0 {
		s.Alpha = 0.05
	}
	if len(s.ReferenceGroups) == 0 {
		s.ReferenceGroups = map[string]string{"forty_plus_indicator": "Under Forty"}
	}
}

// Validate rejects settings no pipeline can run with.
func (s Settings) Validate() error {
	if s.ArtifactsPath == "" {
		return fmt.Errorf("model artifacts path is required (MODEL_ARTIFACTS_PATH or model.artifactsPath)")
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return fmt.Errorf("fairness alpha must be in (0,1), got %v", s.Alpha)
	}
	if s.MetricsPort < 0 || s.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", s.MetricsPort)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
