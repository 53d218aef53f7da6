package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `sim:
  tick_ms: 50
  speed: 2
  seed: 42
assist:
  debounce_ms: 2000
  timeout_seconds: 5
  endpoint: "http://localhost:8080/generate"
  model: "test-model"
metrics:
  prometheus_enabled: true
  prometheus_port: "9200"
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"sim.tick_ms", cfg.Sim.TickMs, 50},
		{"sim.speed", cfg.Sim.Speed, 2.0},
		{"sim.seed", cfg.Sim.Seed, int64(42)},
		{"assist.debounce_ms", cfg.Assist.DebounceMs, 2000},
		{"assist.timeout_seconds", cfg.Assist.TimeoutSeconds, 5},
		{"assist.endpoint", cfg.Assist.Endpoint, "http://localhost:8080/generate"},
		{"assist.model", cfg.Assist.Model, "test-model"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, "9200"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Sim.TickMs != 100 || cfg.Sim.Speed != 1 {
		t.Errorf("sim defaults not applied: %+v", cfg.Sim)
	}
	if cfg.Assist.DebounceMs != 1500 || cfg.Assist.TimeoutSeconds != 10 {
		t.Errorf("assist defaults not applied: %+v", cfg.Assist)
	}
	if cfg.Metrics.PrometheusPort != "2112" {
		t.Errorf("metrics defaults not applied: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging defaults not applied: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FS_LOGGING__LEVEL", "warn")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override ignored, level = %s", cfg.Logging.Level)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadInvalidLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown level")
	}
}
