package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// BackendOpenCV runs the network through the OpenCV DNN module.
	BackendOpenCV = "opencv"
	// BackendONNXRuntime runs the network through the ONNX Runtime shared library.
	BackendONNXRuntime = "onnxruntime"

	// DefaultModelURL points at the MegaDetector v5a ONNX export.
	DefaultModelURL = "https://github.com/agentmorris/MegaDetector/releases/download/v5.0/md_v5a.0.0.onnx"
)

type Config struct {
	ModelPath       string
	ModelURL        string
	CacheDirectory  string
	Backend         string
	ONNXRuntimeLib  string
	ONNXInputName   string
	ONNXOutputName  string
	DownloadTimeout int // seconds
	LogDirectory    string
	LogLevel        string
	BoxThickness    int
	DisplayScale    int // on-screen down-sampling factor per axis
}

// Load reads an optional .env file from the working directory and then
// builds the configuration from the process environment.
func Load() *Config {
	// Variables already present in the environment win over .env entries.
	_ = godotenv.Load()

	return &Config{
		ModelPath:       getEnv("MODEL_PATH", filepath.Join(".", "models", "md_v5a.0.0.onnx")),
		ModelURL:        getEnv("MODEL_URL", DefaultModelURL),
		CacheDirectory:  getEnv("CACHE_DIR", filepath.Join(".", ".animalfinder")),
		Backend:         strings.ToLower(getEnv("DETECTOR_BACKEND", BackendOpenCV)),
		ONNXRuntimeLib:  getEnv("ONNXRUNTIME_LIB", ""),
		ONNXInputName:   getEnv("ONNX_INPUT_NAME", "images"),
		ONNXOutputName:  getEnv("ONNX_OUTPUT_NAME", "output"),
		DownloadTimeout: getEnvAsInt("DOWNLOAD_TIMEOUT", 600),
		LogDirectory:    getEnv("LOG_DIR", ""),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		BoxThickness:    getEnvAsInt("BOX_THICKNESS", 10),
		DisplayScale:    getEnvAsInt("DISPLAY_SCALE", 4),
	}
}

// Validate reports settings that cannot work before anything is loaded.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenCV:
	case BackendONNXRuntime:
		if c.ONNXRuntimeLib == "" {
			return fmt.Errorf("ONNXRUNTIME_LIB must be set for the %s backend", BackendONNXRuntime)
		}
	default:
		return fmt.Errorf("unknown detector backend %q (want %s or %s)", c.Backend, BackendOpenCV, BackendONNXRuntime)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH must not be empty")
	}
	if c.BoxThickness <= 0 {
		return fmt.Errorf("BOX_THICKNESS must be positive, got %d", c.BoxThickness)
	}
	if c.DisplayScale <= 0 {
		return fmt.Errorf("DISPLAY_SCALE must be positive, got %d", c.DisplayScale)
	}
	return nil
}

// WeightsCatalogPath is the SQLite file that records fetched model weights.
func (c *Config) WeightsCatalogPath() string {
	return filepath.Join(c.CacheDirectory, "weights.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
