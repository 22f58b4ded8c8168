// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	FixturePath     string
	RefreshInterval time.Duration
	DiscoveryRetry  time.Duration
	HostTick        time.Duration
	MetricsInterval time.Duration
	Profiling       ProfilingConfig
}

type ProfilingConfig struct {
	Enabled bool
	Port    string
}

// LoadEnvFiles loads the given .env files, or ./.env when none are named.
// Missing files are skipped; variables already set win.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
		log.Printf("loaded environment from %s", f)
	}
	return nil
}

// Load loads .env files and then reads the environment.
func Load(files ...string) (Config, error) {
	if err := LoadEnvFiles(files...); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:        stringOr(getenv("APP_PORT"), "8080"),
		FixturePath: getenv("FIXTURE_PATH"),
		Profiling: ProfilingConfig{
			Enabled: getenv("ENABLE_PROFILING") == "true",
			Port:    stringOr(getenv("PPROF_PORT"), "42069"),
		},
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"REFRESH_INTERVAL", 500 * time.Millisecond, &cfg.RefreshInterval},
		{"DISCOVERY_RETRY", time.Second, &cfg.DiscoveryRetry},
		{"HOST_TICK", 100 * time.Millisecond, &cfg.HostTick},
		{"METRICS_INTERVAL", 0, &cfg.MetricsInterval},
	}
	for _, d := range durations {
		v, err := durationOr(getenv(d.key), d.def)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dest = v
	}
	if cfg.HostTick <= 0 {
		return Config{}, fmt.Errorf("invalid HOST_TICK: must be positive, got %s", cfg.HostTick)
	}
	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationOr(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", v)
	}
	return d, nil
}
