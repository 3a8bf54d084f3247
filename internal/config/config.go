// Package config holds the settings of the landmark overlay loop.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables that locate the detector backend.
const (
	EnvPython   = "LANDMARKCAM_PYTHON"
	EnvScript   = "LANDMARKCAM_SCRIPT"
	EnvLogLevel = "LANDMARKCAM_LOG_LEVEL"
)

// Config holds the loop settings. Everything except the detector backend
// location and the log level is fixed at its default.
type Config struct {
	CameraID int `validate:"gte=0"`

	WindowTitle  string `validate:"required"`
	WindowWidth  int    `validate:"gt=0"`
	WindowHeight int    `validate:"gt=0"`
	WindowX      int    `validate:"gte=0"`
	WindowY      int    `validate:"gte=0"`

	// KeyPollDelay bounds the latency the key poll adds to each frame.
	KeyPollDelay time.Duration `validate:"gt=0"`

	MinDetectionConf float64 `validate:"gte=0,lte=1"`
	MinTrackingConf  float64 `validate:"gte=0,lte=1"`
	MaxFaces         int     `validate:"gt=0"`
	MaxHands         int     `validate:"gt=0"`

	// PythonPath and ScriptPath locate the MediaPipe service. Empty values
	// fall back to a search of well-known locations.
	PythonPath string
	ScriptPath string `validate:"omitempty,endswith=.py"`

	LogLevel string `validate:"oneof=trace debug info warn warning error"`
}

// Default returns the fixed loop configuration.
func Default() Config {
	return Config{
		CameraID:         0,
		WindowTitle:      "Camera Feed",
		WindowWidth:      720,
		WindowHeight:     450,
		WindowX:          100,
		WindowY:          100,
		KeyPollDelay:     5 * time.Millisecond,
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
		MaxFaces:         1,
		MaxHands:         2,
		LogLevel:         "info",
	}
}

// Load returns Default with the backend location and log level taken from
// the environment. A .env file in the working directory is read first when
// present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv(EnvPython); v != "" {
		cfg.PythonPath = v
	}
	if v := os.Getenv(EnvScript); v != "" {
		cfg.ScriptPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// KeyPollMillis returns KeyPollDelay in whole milliseconds, at least 1.
func (c Config) KeyPollMillis() int {
	ms := int(c.KeyPollDelay / time.Millisecond)
	if ms < 1 {
		return 1
	}
	return ms
}
