package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the top-level covidtrends configuration
type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Country  string         `yaml:"country"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
	Forecast ForecastConfig `yaml:"forecast"`
	Charts   ChartConfig    `yaml:"charts"`
}

// SourcesConfig holds the upstream CSSE time-series CSV endpoints
type SourcesConfig struct {
	ConfirmedURL       string `yaml:"confirmed_url"`
	DeathsURL          string `yaml:"deaths_url"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
	UserAgent          string `yaml:"user_agent"`
}

// RequestTimeout returns the request timeout as a duration
func (s SourcesConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSecs) * time.Second
}

// CacheConfig controls the on-disk CSV cache
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	TTLSecs int    `yaml:"ttl_secs"` // Cached file older than TTL triggers a refetch
}

// TTL returns the cache freshness window as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// OutputConfig controls where report artifacts land
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ForecastConfig bounds the auto-ARIMA model search
type ForecastConfig struct {
	Horizon        int    `yaml:"horizon"`         // Forecast steps (days)
	SmoothWindow   int    `yaml:"smooth_window"`   // Trailing moving-average window (days)
	MaxP           int    `yaml:"max_p"`           // Maximum AR order
	MaxD           int    `yaml:"max_d"`           // Maximum differencing order
	MaxQ           int    `yaml:"max_q"`           // Maximum MA order
	Seasonal       bool   `yaml:"seasonal"`        // Consider weekly-seasonal models
	SeasonalPeriod int    `yaml:"seasonal_period"` // Seasonal period in days
	Criterion      string `yaml:"criterion"`       // Information criterion: aic or bic
}

// ChartConfig controls rendered chart dimensions
type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches"`
	HeightInches float64 `yaml:"height_inches"`
}

const csseBase = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series"

// Default returns the baseline configuration used when no file is supplied
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			ConfirmedURL:       csseBase + "/time_series_covid19_confirmed_global.csv",
			DeathsURL:          csseBase + "/time_series_covid19_deaths_global.csv",
			RequestTimeoutSecs: 60,
			UserAgent:          "covidtrends/1.0",
		},
		Country: "India",
		Cache: CacheConfig{
			Dir:     filepath.Join("data", "cache"),
			TTLSecs: int((6 * time.Hour).Seconds()),
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Forecast: ForecastConfig{
			Horizon:        14,
			SmoothWindow:   7,
			MaxP:           5,
			MaxD:           2,
			MaxQ:           5,
			Seasonal:       false,
			SeasonalPeriod: 7,
			Criterion:      "aic",
		},
		Charts: ChartConfig{
			WidthInches:  10,
			HeightInches: 6,
		},
	}
}

// Load reads configuration from a YAML file, layered over defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for out-of-range values and returns
// every problem found
func (c *Config) Validate() []string {
	var problems []string

	if c.Sources.ConfirmedURL == "" {
		problems = append(problems, "sources.confirmed_url must not be empty")
	}
	if c.Sources.DeathsURL == "" {
		problems = append(problems, "sources.deaths_url must not be empty")
	}
	if c.Country == "" {
		problems = append(problems, "country must not be empty")
	}
	if c.Sources.RequestTimeoutSecs < 1 {
		problems = append(problems, fmt.Sprintf("request timeout %ds must be at least 1s", c.Sources.RequestTimeoutSecs))
	}

	if c.Forecast.Horizon < 1 || c.Forecast.Horizon > 90 {
		problems = append(problems, fmt.Sprintf("forecast horizon %d outside [1, 90] days", c.Forecast.Horizon))
	}
	if c.Forecast.SmoothWindow < 1 || c.Forecast.SmoothWindow > 28 {
		problems = append(problems, fmt.Sprintf("smooth window %d outside [1, 28] days", c.Forecast.SmoothWindow))
	}
	if c.Forecast.MaxP < 0 || c.Forecast.MaxP > 10 {
		problems = append(problems, fmt.Sprintf("max AR order %d outside [0, 10]", c.Forecast.MaxP))
	}
	if c.Forecast.MaxD < 0 || c.Forecast.MaxD > 3 {
		problems = append(problems, fmt.Sprintf("max differencing order %d outside [0, 3]", c.Forecast.MaxD))
	}
	if c.Forecast.MaxQ < 0 || c.Forecast.MaxQ > 10 {
		problems = append(problems, fmt.Sprintf("max MA order %d outside [0, 10]", c.Forecast.MaxQ))
	}
	if c.Forecast.Seasonal && c.Forecast.SeasonalPeriod < 2 {
		problems = append(problems, fmt.Sprintf("seasonal period %d must be at least 2", c.Forecast.SeasonalPeriod))
	}
	if c.Forecast.Criterion != "aic" && c.Forecast.Criterion != "bic" {
		problems = append(problems, fmt.Sprintf("criterion %q must be aic or bic", c.Forecast.Criterion))
	}

	if c.Charts.WidthInches <= 0 || c.Charts.HeightInches <= 0 {
		problems = append(problems, "chart dimensions must be positive")
	}

	return problems
}

// DefaultConfigPath returns the default path for the config file
func DefaultConfigPath() string {
	return filepath.Join("config", "covidtrends.yaml")
}
