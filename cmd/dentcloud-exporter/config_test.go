package main

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"
)

var configEnv = []string{
	"DENTCLOUD_CONFIG",
	"DENTCLOUD_API_KEY",
	"DENTCLOUD_KEY_ID",
	"DENTCLOUD_BASE_URL",
	"DENTCLOUD_TIMEZONE",
	"DENTCLOUD_METERS",
	"DENTCLOUD_METER_NAMES",
	"DENTCLOUD_TOPICS",
	"EXPORTER_PORT",
	"LOG_LEVEL",
}

// clearEnv blanks every variable loadConfig reads; empty counts as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestParseMeters(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		names []string
		want  []Meter
	}{
		{
			name:  "single meter with name",
			ids:   []string{"P482311252"},
			names: []string{"main"},
			want:  []Meter{{Name: "main", ID: "P482311252"}},
		},
		{
			name: "single meter without name",
			ids:  []string{"P482311252"},
			want: []Meter{{Name: "P482311252", ID: "P482311252"}},
		},
		{
			name:  "multiple meters with spaces",
			ids:   []string{" P1 ", " P2 "},
			names: []string{" house ", " garage "},
			want:  []Meter{{Name: "house", ID: "P1"}, {Name: "garage", ID: "P2"}},
		},
		{
			name:  "fewer names than meters",
			ids:   []string{"P1", "P2"},
			names: []string{"house"},
			want:  []Meter{{Name: "house", ID: "P1"}, {Name: "P2", ID: "P2"}},
		},
		{
			name:  "empty values skipped",
			ids:   []string{"P1", "", "P2"},
			names: []string{"house", "", "garage"},
			want:  []Meter{{Name: "house", ID: "P1"}, {Name: "garage", ID: "P2"}},
		},
		{
			name:  "repeated meter kept once",
			ids:   []string{"P1", " P1 ", "P2"},
			names: []string{"house", "duplicate", "garage"},
			want:  []Meter{{Name: "house", ID: "P1"}, {Name: "garage", ID: "P2"}},
		},
		{
			name: "no meters",
			ids:  nil,
			want: []Meter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMeters(tt.ids, tt.names)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMeters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env: map[string]string{
				"DENTCLOUD_API_KEY": "key",
				"DENTCLOUD_KEY_ID":  "id",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9090" {
					t.Errorf("Port = %s, want 9090", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
				}
				if !reflect.DeepEqual(cfg.Topics, defaultTopics) {
					t.Errorf("Topics = %v, want %v", cfg.Topics, defaultTopics)
				}
				if len(cfg.Meters) != 0 {
					t.Errorf("Meters = %v, want none", cfg.Meters)
				}
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"DENTCLOUD_API_KEY":     "key",
				"DENTCLOUD_KEY_ID":      "id",
				"DENTCLOUD_METERS":      "P1,P2",
				"DENTCLOUD_METER_NAMES": "house,",
				"DENTCLOUD_TOPICS":      " A , kWHNet ,",
				"DENTCLOUD_TIMEZONE":    "America/New_York",
				"EXPORTER_PORT":         "8080",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("Port = %s, want 8080", cfg.Port)
				}
				if want := []string{"A", "kWHNet"}; !reflect.DeepEqual(cfg.Topics, want) {
					t.Errorf("Topics = %v, want %v", cfg.Topics, want)
				}
				if want := []string{"P1", "P2"}; !reflect.DeepEqual(cfg.Meters, want) {
					t.Errorf("Meters = %v, want %v", cfg.Meters, want)
				}
				if want := []string{"house", ""}; !reflect.DeepEqual(cfg.MeterNames, want) {
					t.Errorf("MeterNames = %v, want %v", cfg.MeterNames, want)
				}
				if loc := cfg.Location(); loc.String() != "America/New_York" {
					t.Errorf("Location() = %v, want America/New_York", loc)
				}
			},
		},
		{
			name:    "missing api key",
			env:     map[string]string{"DENTCLOUD_KEY_ID": "id"},
			wantErr: true,
		},
		{
			name:    "missing key id",
			env:     map[string]string{"DENTCLOUD_API_KEY": "key"},
			wantErr: true,
		},
		{
			name: "invalid timezone",
			env: map[string]string{
				"DENTCLOUD_API_KEY":  "key",
				"DENTCLOUD_KEY_ID":   "id",
				"DENTCLOUD_TIMEZONE": "Mars/Olympus_Mons",
			},
			wantErr: true,
		},
		{
			name: "only empty topics",
			env: map[string]string{
				"DENTCLOUD_API_KEY": "key",
				"DENTCLOUD_KEY_ID":  "id",
				"DENTCLOUD_TOPICS":  " , ",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := loadConfig()

			if tt.wantErr {
				if err == nil {
					t.Errorf("loadConfig() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("loadConfig() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "dentcloud.toml")
	content := `api_key = "file-key"
key_id = "file-id"
meters = ["P1", "P2"]
meter_names = ["house", "garage"]
timezone = "UTC"
port = "9191"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("DENTCLOUD_CONFIG", path)
	t.Setenv("EXPORTER_PORT", "9292")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}

	if cfg.APIKey != "file-key" || cfg.KeyID != "file-id" {
		t.Errorf("credentials = %s/%s, want file-key/file-id", cfg.APIKey, cfg.KeyID)
	}
	if cfg.Port != "9292" {
		t.Errorf("Port = %s, want environment override 9292", cfg.Port)
	}

	meters := parseMeters(cfg.Meters, cfg.MeterNames)
	if len(meters) != 2 || meters[1].Name != "garage" {
		t.Errorf("meters = %v, want house and garage", meters)
	}

	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}

func TestLoadConfig_FileTopicsKeepDefaults(t *testing.T) {
	want := slices.Clone(defaultTopics)

	path := filepath.Join(t.TempDir(), "dentcloud.toml")
	content := `api_key = "file-key"
key_id = "file-id"
topics = ["V"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	for i := 0; i < 2; i++ {
		clearEnv(t)
		t.Setenv("DENTCLOUD_CONFIG", path)

		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() unexpected error: %v", err)
		}
		if !reflect.DeepEqual(cfg.Topics, []string{"V"}) {
			t.Errorf("Topics = %v, want [V]", cfg.Topics)
		}
	}

	if !reflect.DeepEqual(defaultTopics, want) {
		t.Errorf("defaultTopics = %v after loading a config file, want %v", defaultTopics, want)
	}

	clearEnv(t)
	t.Setenv("DENTCLOUD_API_KEY", "key")
	t.Setenv("DENTCLOUD_KEY_ID", "id")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Topics, want) {
		t.Errorf("Topics = %v without a config file, want %v", cfg.Topics, want)
	}
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DENTCLOUD_API_KEY", "key")
	t.Setenv("DENTCLOUD_KEY_ID", "id")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if cfg.Location() != time.Local {
		t.Errorf("Location() = %v, want Local", cfg.Location())
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DENTCLOUD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() expected error for missing config file")
	}
}
