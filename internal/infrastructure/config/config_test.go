package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "./data/veahome.db" {
		t.Errorf("database path = %q, want default", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("mqtt qos = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Scheduler.TickInterval != 60 {
		t.Errorf("scheduler tick interval = %d, want 60", cfg.Scheduler.TickInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: /tmp/test.db
mqtt:
  broker:
    host: broker.local
    port: 8883
    tls: true
scheduler:
  tick_interval: 30
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("mqtt host = %q", cfg.MQTT.Broker.Host)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("mqtt tls = false, want true")
	}
	if cfg.Scheduler.TickInterval != 30 {
		t.Errorf("tick interval = %d, want 30", cfg.Scheduler.TickInterval)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
mqtt:
  broker:
    host: from-file
`)

	t.Setenv("VEAHOME_MQTT_HOST", "from-env")
	t.Setenv("VEAHOME_MQTT_PORT", "2883")
	t.Setenv("VEAHOME_DATABASE_PATH", "/env/veahome.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("mqtt host = %q, want from-env", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 2883 {
		t.Errorf("mqtt port = %d, want 2883", cfg.MQTT.Broker.Port)
	}
	if cfg.Database.Path != "/env/veahome.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() with missing file: expected error, got nil")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"qos too high", func(c *Config) { c.MQTT.QoS = 3 }},
		{"port out of range", func(c *Config) { c.MQTT.Broker.Port = 0 }},
		{"influx enabled without url", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.Bucket = "telemetry"
		}},
		{"influx enabled without bucket", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.URL = "http://localhost:8086"
		}},
		{"zero tick interval", func(c *Config) { c.Scheduler.TickInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}
