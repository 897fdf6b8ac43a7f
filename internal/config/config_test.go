package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.toml")
	cfg := &Config{
		LogLevel:       "debug",
		LogFormat:      "json",
		AlertThreshold: "warning",
		StoreMode:      "remote",
		DBPath:         "/custom/alerts.db",
		RemoteURL:      "http://collector:7273",
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("log_level = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("store_mode = 'cloud'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if err == nil || !strings.Contains(err.Error(), "store_mode") {
		t.Fatalf("err = %v, want store_mode validation error", err)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"log_level", "warn"},
		{"log_format", "text"},
		{"alert_threshold", "critical"},
		{"store_mode", "off"},
		{"store_mode", ""},
		{"db_path", "/tmp/test.db"},
		{"remote_url", "http://localhost:7273"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tt.value {
				t.Errorf("got %q, want %q", got, tt.value)
			}
		})
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"log_level", "loud"},
		{"log_format", "xml"},
		{"alert_threshold", "debug"},
		{"store_mode", "cloud"},
		{"nonexistent", "value"},
	}
	for _, tt := range tests {
		cfg := &Config{}
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q): expected error", tt.key, tt.value)
		}
	}
}

func TestGetUnknownKey(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.Get("nonexistent"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	if len(keys) != len(validKeys) {
		t.Fatalf("expected %d keys, got %d", len(validKeys), len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
	for _, k := range keys {
		if !validKeys[k] {
			t.Errorf("ValidKeys lists %q which Set rejects", k)
		}
	}
}

func TestPath(t *testing.T) {
	p := Path()
	if filepath.Base(p) != "config.toml" {
		t.Errorf("Path() = %q, want basename config.toml", p)
	}
	if filepath.Base(filepath.Dir(p)) != ".newman" {
		t.Errorf("Path() = %q, want it under .newman", p)
	}
}

func TestDBPathOrDefault(t *testing.T) {
	if got := (&Config{DBPath: "/x.db"}).DBPathOrDefault(); got != "/x.db" {
		t.Errorf("DBPathOrDefault = %q, want /x.db", got)
	}
	if got := (&Config{}).DBPathOrDefault(); got != DefaultDBPath() {
		t.Errorf("DBPathOrDefault = %q, want %q", got, DefaultDBPath())
	}
}

func TestLoadFromReadError(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatal("expected error when reading directory as file")
	}
}

func TestStoreTarget(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, DefaultDBPath()},
		{Config{StoreMode: StoreLocal, DBPath: "/j.db"}, "/j.db"},
		{Config{StoreMode: StoreRemote, RemoteURL: "http://c:7273", DBPath: "/j.db"}, "http://c:7273"},
		{Config{StoreMode: StoreOff, DBPath: "/j.db"}, ""},
	}
	for _, tt := range tests {
		if got := tt.cfg.StoreTarget(); got != tt.want {
			t.Errorf("%+v.StoreTarget() = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
