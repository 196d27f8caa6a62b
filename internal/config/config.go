package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Config represents the application configuration
type Config struct {
	Remote  RemoteConfig  `json:"remote"`
	Profile ProfileConfig `json:"profile"`
	Ranges  RangesConfig  `json:"ranges"`
	Display DisplayConfig `json:"display"`
	Logging LoggingConfig `json:"logging"`
}

// RemoteConfig holds the hosted data store endpoint and OAuth client credentials
type RemoteConfig struct {
	BaseURL      string `json:"base_url"`
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURL      string `json:"auth_url"`
	TokenURL     string `json:"token_url"`
}

// ProfileConfig holds body attributes for BMI and calorie targets
type ProfileConfig struct {
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`         // "male", "female", or anything else
	ActivityLevel string  `json:"activity_level"` // e.g. "moderately_active"
}

// RangesConfig overrides the default normal ranges
type RangesConfig struct {
	BloodSugarLow  float64 `json:"blood_sugar_low"`
	BloodSugarHigh float64 `json:"blood_sugar_high"`
}

// DisplayConfig holds chart and unit preferences
type DisplayConfig struct {
	ChartWidth   int    `json:"chart_width"`
	ChartHeight  int    `json:"chart_height"`
	ChartPadding int    `json:"chart_padding"`
	ChartPoints  int    `json:"chart_points"` // most recent readings to plot
	WeightUnit   string `json:"weight_unit"`  // "kg" or "lb"
}

// LoggingConfig controls the rotating log file
type LoggingConfig struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

var validActivityLevels = map[string]bool{
	"":                  true,
	"sedentary":         true,
	"lightly_active":    true,
	"moderately_active": true,
	"very_active":       true,
	"extremely_active":  true,
}

var validLogLevels = map[string]bool{
	"": true, "trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Ranges: RangesConfig{
			BloodSugarLow:  70,
			BloodSugarHigh: 140,
		},
		Display: DisplayConfig{
			ChartWidth:   340,
			ChartHeight:  220,
			ChartPadding: 20,
			ChartPoints:  14,
			WeightUnit:   "kg",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from ~/.vitals/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path and fills in defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Ranges.BloodSugarLow == 0 {
		c.Ranges.BloodSugarLow = defaults.Ranges.BloodSugarLow
	}
	if c.Ranges.BloodSugarHigh == 0 {
		c.Ranges.BloodSugarHigh = defaults.Ranges.BloodSugarHigh
	}
	if c.Display.ChartWidth == 0 {
		c.Display.ChartWidth = defaults.Display.ChartWidth
	}
	if c.Display.ChartHeight == 0 {
		c.Display.ChartHeight = defaults.Display.ChartHeight
	}
	if c.Display.ChartPadding == 0 {
		c.Display.ChartPadding = defaults.Display.ChartPadding
	}
	if c.Display.ChartPoints == 0 {
		c.Display.ChartPoints = defaults.Display.ChartPoints
	}
	if c.Display.WeightUnit == "" {
		c.Display.WeightUnit = defaults.Display.WeightUnit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Save writes the configuration to ~/.vitals/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path, creating the directory if needed
func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // don't overwrite
	}

	example := DefaultConfig()
	example.Remote = RemoteConfig{
		BaseURL:      "https://YOUR_PROJECT.example.com",
		APIKey:       "YOUR_API_KEY",
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
		AuthURL:      "https://YOUR_PROJECT.example.com/auth/v1/authorize",
		TokenURL:     "https://YOUR_PROJECT.example.com/auth/v1/token",
	}
	example.Profile = ProfileConfig{
		HeightCm:      175,
		WeightKg:      70,
		Age:           30,
		Gender:        "male",
		ActivityLevel: "moderately_active",
	}

	return Save(&example)
}

// Validate checks required fields and value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var err error

	if c.Remote.BaseURL == "" || c.Remote.BaseURL == "https://YOUR_PROJECT.example.com" {
		err = multierr.Append(err, errors.New("remote.base_url is required"))
	} else if u, perr := url.Parse(c.Remote.BaseURL); perr != nil || u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("remote.base_url %q is not an absolute URL", c.Remote.BaseURL))
	}
	if c.Remote.APIKey == "" || c.Remote.APIKey == "YOUR_API_KEY" {
		err = multierr.Append(err, errors.New("remote.api_key is required"))
	}
	if c.Remote.ClientID == "" || c.Remote.ClientID == "YOUR_CLIENT_ID" {
		err = multierr.Append(err, errors.New("remote.client_id is required"))
	}
	if c.Remote.ClientSecret == "" || c.Remote.ClientSecret == "YOUR_CLIENT_SECRET" {
		err = multierr.Append(err, errors.New("remote.client_secret is required"))
	}
	if c.Remote.AuthURL == "" || c.Remote.TokenURL == "" {
		err = multierr.Append(err, errors.New("remote.auth_url and remote.token_url are required"))
	}

	if c.Profile.HeightCm < 0 || c.Profile.WeightKg < 0 || c.Profile.Age < 0 {
		err = multierr.Append(err, errors.New("profile height, weight and age must not be negative"))
	}
	if !validActivityLevels[c.Profile.ActivityLevel] {
		err = multierr.Append(err, fmt.Errorf("profile.activity_level %q is not recognized", c.Profile.ActivityLevel))
	}

	if c.Ranges.BloodSugarLow >= c.Ranges.BloodSugarHigh {
		err = multierr.Append(err, fmt.Errorf("ranges.blood_sugar_low (%v) must be less than ranges.blood_sugar_high (%v)",
			c.Ranges.BloodSugarLow, c.Ranges.BloodSugarHigh))
	}

	if c.Display.ChartPadding*2 >= c.Display.ChartWidth || c.Display.ChartPadding*2 >= c.Display.ChartHeight {
		err = multierr.Append(err, errors.New("display.chart_padding must leave room for the plot"))
	}
	if c.Display.ChartPoints < 0 {
		err = multierr.Append(err, errors.New("display.chart_points must not be negative"))
	}
	if c.Display.WeightUnit != "" && c.Display.WeightUnit != "kg" && c.Display.WeightUnit != "lb" {
		err = multierr.Append(err, fmt.Errorf("display.weight_unit must be \"kg\" or \"lb\", got %q", c.Display.WeightUnit))
	}

	if !validLogLevels[c.Logging.Level] {
		err = multierr.Append(err, fmt.Errorf("logging.level %q is not recognized", c.Logging.Level))
	}

	return err
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".vitals"), nil
}
