// Package config resolves application settings from defaults, an optional YAML file
// and MISSINGSTAR_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"missingstar/internal/models"
)

const envPrefix = "MISSINGSTAR_"

type Config struct {
	MaxPlotMag  float64
	Resolution  int
	Scale       float64
	Timezone    string
	Latitude    float64
	Longitude   float64
	DefaultN    float64
	DefaultK    int
	OutputDir   string
	KeepOutput  bool
	CatalogPath string
	LogLevel    string
	LogFile     string
}

// YAMLConfig is the on-disk shape. Pointers distinguish absent keys from zero values.
type YAMLConfig struct {
	MaxPlotMag  *float64 `yaml:"max_plot_mag"`
	Resolution  *int     `yaml:"resolution"`
	Scale       *float64 `yaml:"scale"`
	Timezone    *string  `yaml:"timezone"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
	DefaultN    *float64 `yaml:"default_n"`
	DefaultK    *int     `yaml:"default_k"`
	OutputDir   *string  `yaml:"output_dir"`
	KeepOutput  *bool    `yaml:"keep_output"`
	CatalogPath *string  `yaml:"catalog_path"`
	LogLevel    *string  `yaml:"log_level"`
	LogFile     *string  `yaml:"log_file"`
}

func Default() Config {
	return Config{
		MaxPlotMag: 4.0,
		Resolution: 3000,
		Scale:      0.9,
		Timezone:   "Asia/Seoul",
		Latitude:   37.5665,
		Longitude:  126.9780,
		DefaultN:   3.0,
		DefaultK:   10,
		LogLevel:   "info",
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	const op = "config.load"
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &models.OpError{Op: op, Kind: models.KindConfig, Field: path, Err: err}
		}
		var dto YAMLConfig
		if err := yaml.Unmarshal(b, &dto); err != nil {
			return Config{}, &models.OpError{Op: op, Kind: models.KindConfig, Field: path, Err: err}
		}
		dto.apply(&cfg)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, &models.OpError{Op: op, Kind: models.KindConfig, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (y YAMLConfig) apply(cfg *Config) {
	set(&cfg.MaxPlotMag, y.MaxPlotMag)
	set(&cfg.Resolution, y.Resolution)
	set(&cfg.Scale, y.Scale)
	set(&cfg.Timezone, y.Timezone)
	set(&cfg.Latitude, y.Latitude)
	set(&cfg.Longitude, y.Longitude)
	set(&cfg.DefaultN, y.DefaultN)
	set(&cfg.DefaultK, y.DefaultK)
	set(&cfg.OutputDir, y.OutputDir)
	set(&cfg.KeepOutput, y.KeepOutput)
	set(&cfg.CatalogPath, y.CatalogPath)
	set(&cfg.LogLevel, y.LogLevel)
	set(&cfg.LogFile, y.LogFile)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = i
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	float("MAX_PLOT_MAG", &cfg.MaxPlotMag)
	integer("RESOLUTION", &cfg.Resolution)
	float("SCALE", &cfg.Scale)
	str("TIMEZONE", &cfg.Timezone)
	float("LATITUDE", &cfg.Latitude)
	float("LONGITUDE", &cfg.Longitude)
	float("DEFAULT_N", &cfg.DefaultN)
	integer("DEFAULT_K", &cfg.DefaultK)
	str("OUTPUT_DIR", &cfg.OutputDir)
	boolean("KEEP_OUTPUT", &cfg.KeepOutput)
	str("CATALOG_PATH", &cfg.CatalogPath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.MaxPlotMag <= 0 || c.MaxPlotMag > 8 {
		errs = append(errs, fmt.Errorf("max_plot_mag %.1f must be within (0, 8]", c.MaxPlotMag))
	}
	if c.Resolution < 100 || c.Resolution > 8000 {
		errs = append(errs, fmt.Errorf("resolution %d must be within [100, 8000]", c.Resolution))
	}
	if c.Scale <= 0 || c.Scale > 1 {
		errs = append(errs, fmt.Errorf("scale %.2f must be within (0, 1]", c.Scale))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q is unknown", c.Timezone))
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude %.4f must be within [-90, 90]", c.Latitude))
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude %.4f must be within [-180, 180]", c.Longitude))
	}
	if c.DefaultN < 0 || c.DefaultN > c.MaxPlotMag {
		errs = append(errs, fmt.Errorf("default_n %.1f must be within [0, max_plot_mag]", c.DefaultN))
	}
	if c.DefaultK < 1 {
		errs = append(errs, fmt.Errorf("default_k %d must be at least 1", c.DefaultK))
	}
	if err := errors.Join(errs...); err != nil {
		return &models.OpError{Op: "config.validate", Kind: models.KindConfig, Err: err}
	}
	return nil
}

// Limits derives request bounds from the configuration.
func (c Config) Limits() models.Limits {
	return models.Limits{MaxPlotMag: c.MaxPlotMag, DefaultTimezone: c.Timezone}
}
