package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := []byte(`
telegram:
  token: from-file
monitor:
  default_interval: 60m
  allowed_intervals: [5m, 15m, 60m, 240m]
  low_frequency: 30s
  high_frequency: 2s
`)
	if err := os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), body, 0o644); err != nil {
		t.Fatal(err)
	}

	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Setenv(configFilePathENV, "test.yaml")
	t.Setenv(tokenTelegramENV, "from-env")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token=%q, expected env override", cfg.Telegram.Token)
	}
	if cfg.Monitor.DefaultInterval != "60m" {
		t.Fatalf("default_interval=%q, expected 60m", cfg.Monitor.DefaultInterval)
	}
	if cfg.Monitor.LowFrequency != 30*time.Second {
		t.Fatalf("low_frequency=%v", cfg.Monitor.LowFrequency)
	}
	// не заданные в файле поля остаются дефолтными
	if cfg.Monitor.CacheTTL != 5*time.Second || cfg.Monitor.Window != 10*time.Second {
		t.Fatalf("defaults lost: ttl=%v window=%v", cfg.Monitor.CacheTTL, cfg.Monitor.Window)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "interval outside allowed", mutate: func(c *Config) { c.Monitor.DefaultInterval = "1m" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.Store.Driver = "postgres"; c.DB = "postgres://x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate()=%v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
