// Package config loads nettrace settings from the environment and an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/doccache"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

// Environment variables read by Load
const (
	EnvAnchorTolerance    = "NETTRACE_ANCHOR_TOLERANCE"
	EnvMaxVisited         = "NETTRACE_MAX_VISITED"
	EnvLabelTolerance     = "NETTRACE_LABEL_TOLERANCE"
	EnvPowerTolerance     = "NETTRACE_POWER_TOLERANCE"
	EnvComponentProximity = "NETTRACE_COMPONENT_PROXIMITY"
	EnvLabelProximity     = "NETTRACE_LABEL_PROXIMITY"
	EnvJunctionTolerance  = "NETTRACE_JUNCTION_TOLERANCE"
	EnvCacheSize          = "NETTRACE_CACHE_SIZE"
	EnvLogLevel           = "NETTRACE_LOG_LEVEL"
)

type Config struct {
	Trace     trace.Config
	CacheSize int
	LogLevel  slog.Level
}

// Load reads .env (if present) and then the NETTRACE_* variables. Unset
// variables keep their defaults; malformed values are an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Trace:     *trace.DefaultConfig(),
		CacheSize: doccache.DefaultSize,
		LogLevel:  slog.LevelInfo,
	}

	floats := []struct {
		env string
		dst *float64
	}{
		{EnvAnchorTolerance, &cfg.Trace.AnchorTolerance},
		{EnvLabelTolerance, &cfg.Trace.LabelTolerance},
		{EnvPowerTolerance, &cfg.Trace.PowerTolerance},
		{EnvComponentProximity, &cfg.Trace.ComponentProximity},
		{EnvLabelProximity, &cfg.Trace.LabelProximity},
		{EnvJunctionTolerance, &cfg.Trace.JunctionTolerance},
	}
	for _, f := range floats {
		if err := getEnvAsFloat(f.env, f.dst); err != nil {
			return nil, err
		}
	}

	if err := getEnvAsInt(EnvMaxVisited, &cfg.Trace.MaxVisited); err != nil {
		return nil, err
	}
	if err := getEnvAsInt(EnvCacheSize, &cfg.CacheSize); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	if err := cfg.Trace.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvAsFloat(key string, dst *float64) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, raw)
	}
	*dst = v
	return nil
}

func getEnvAsInt(key string, dst *int) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	*dst = v
	return nil
}
