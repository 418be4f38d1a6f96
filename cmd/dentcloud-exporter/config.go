package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultPort     = "9090"
	defaultLogLevel = "info"
)

var defaultTopics = []string{"kWHNet", "DemandkW", "A", "dPF"}

// Meter is a single DentCloud meter to export
type Meter struct {
	Name string
	ID   string
}

// Config holds the exporter configuration. Values come from an optional TOML
// file named by DENTCLOUD_CONFIG, overridden by environment variables.
type Config struct {
	APIKey     string   `toml:"api_key"`
	KeyID      string   `toml:"key_id"`
	BaseURL    string   `toml:"base_url"`
	Meters     []string `toml:"meters"`
	MeterNames []string `toml:"meter_names"`
	Topics     []string `toml:"topics"`
	Timezone   string   `toml:"timezone"`
	Port       string   `toml:"port"`
	LogLevel   string   `toml:"log_level"`

	location *time.Location
}

// loadConfig reads .env, the config file and the environment, in that order
func loadConfig() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Topics:   slices.Clone(defaultTopics),
		Port:     defaultPort,
		LogLevel: defaultLogLevel,
	}

	if path := os.Getenv("DENTCLOUD_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	setString(&cfg.APIKey, "DENTCLOUD_API_KEY")
	setString(&cfg.KeyID, "DENTCLOUD_KEY_ID")
	setString(&cfg.BaseURL, "DENTCLOUD_BASE_URL")
	setString(&cfg.Timezone, "DENTCLOUD_TIMEZONE")
	setString(&cfg.Port, "EXPORTER_PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setList(&cfg.Meters, "DENTCLOUD_METERS")
	setList(&cfg.MeterNames, "DENTCLOUD_METER_NAMES")
	setList(&cfg.Topics, "DENTCLOUD_TOPICS")

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("DENTCLOUD_API_KEY must be set")
	}
	if cfg.KeyID == "" {
		return nil, fmt.Errorf("DENTCLOUD_KEY_ID must be set")
	}

	cfg.Topics = compact(cfg.Topics)
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("no valid topics configured")
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.location = loc

	return cfg, nil
}

// Location returns the timezone the meters are in. The API reports times
// in the meter's local time, so the request window is computed there too.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// parseMeters pairs meter IDs with their optional display names. Repeated
// IDs would export duplicate series, so only the first one is kept.
func parseMeters(ids, names []string) []Meter {
	meters := make([]Meter, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for i := range ids {
		id := strings.TrimSpace(ids[i])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		name := id
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			name = strings.TrimSpace(names[i])
		}

		meters = append(meters, Meter{
			Name: name,
			ID:   id,
		})
	}
	return meters
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setList keeps empty entries so that names stay aligned with meter IDs
func setList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.Split(v, ",")
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
