package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MODEL_PATH", "MODEL_URL", "CACHE_DIR", "DETECTOR_BACKEND", "ONNXRUNTIME_LIB", "LOG_DIR", "LOG_LEVEL", "BOX_THICKNESS", "DISPLAY_SCALE", "DOWNLOAD_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ModelPath != filepath.Join("models", "md_v5a.0.0.onnx") {
		t.Errorf("unexpected model path %q", cfg.ModelPath)
	}
	if cfg.ModelURL != DefaultModelURL {
		t.Errorf("unexpected model url %q", cfg.ModelURL)
	}
	if cfg.Backend != BackendOpenCV {
		t.Errorf("expected backend %q, got %q", BackendOpenCV, cfg.Backend)
	}
	if cfg.BoxThickness != 10 || cfg.DisplayScale != 4 {
		t.Errorf("unexpected display settings: thickness=%d scale=%d", cfg.BoxThickness, cfg.DisplayScale)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_PATH", "/tmp/md.onnx")
	t.Setenv("DETECTOR_BACKEND", "ONNXRuntime")
	t.Setenv("ONNXRUNTIME_LIB", "/usr/lib/libonnxruntime.so")
	t.Setenv("BOX_THICKNESS", "3")
	t.Setenv("DISPLAY_SCALE", "not-a-number")
	t.Setenv("CACHE_DIR", "/var/cache/af")

	cfg := Load()

	if cfg.ModelPath != "/tmp/md.onnx" {
		t.Errorf("expected overridden model path, got %q", cfg.ModelPath)
	}
	if cfg.Backend != BackendONNXRuntime {
		t.Errorf("backend should be lower-cased, got %q", cfg.Backend)
	}
	if cfg.BoxThickness != 3 {
		t.Errorf("expected thickness 3, got %d", cfg.BoxThickness)
	}
	if cfg.DisplayScale != 4 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.DisplayScale)
	}
	if cfg.WeightsCatalogPath() != filepath.Join("/var/cache/af", "weights.db") {
		t.Errorf("unexpected catalog path %q", cfg.WeightsCatalogPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		ModelPath:    "m.onnx",
		Backend:      BackendOpenCV,
		LogLevel:     "info",
		BoxThickness: 10,
		DisplayScale: 4,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Backend = "tflite" }, "unknown detector backend"},
		{"onnxruntime without lib", func(c *Config) { c.Backend = BackendONNXRuntime }, "ONNXRUNTIME_LIB"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "unknown log level"},
		{"empty model path", func(c *Config) { c.ModelPath = "" }, "MODEL_PATH"},
		{"zero thickness", func(c *Config) { c.BoxThickness = 0 }, "BOX_THICKNESS"},
		{"negative scale", func(c *Config) { c.DisplayScale = -1 }, "DISPLAY_SCALE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
