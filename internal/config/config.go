// Package config loads server configuration from an optional JSON
// file, following the load-with-defaults pattern used across the
// rest of the stack: a bare invocation runs with sane defaults, and
// an operator-supplied file only overrides what it sets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `json:"level"`
	Path  string `json:"path"`
}

// Config is the full set of operator-tunable knobs. None of it
// changes wire format or game semantics; it only adjusts where the
// server listens, how verbosely it logs, and its admission-control
// thresholds.
type Config struct {
	Addr            string        `json:"addr"`
	TickRateMS      int           `json:"tickRateMs"`
	Log             LogConfig     `json:"log"`
	AdmissionMax    int           `json:"admissionMax"`
	AdmissionWindow time.Duration `json:"-"`
	AdmissionWindowMS int         `json:"admissionWindowMs"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Addr:       DefaultAddr,
		TickRateMS: DefaultTickRateMS,
		Log: LogConfig{
			Level: "info",
			Path:  "pong-server.log",
		},
		AdmissionMax:      10,
		AdmissionWindowMS: 1000,
		AdmissionWindow:   time.Second,
	}
}

// Load reads the JSON config at path and overlays it onto Default().
// An empty path returns the defaults unchanged; this is what a
// no-argument invocation of the server does.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	overlay := cfg
	if err := json.Unmarshal(buf, &overlay); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if overlay.TickRateMS <= 0 {
		overlay.TickRateMS = DefaultTickRateMS
	}
	if overlay.AdmissionWindowMS <= 0 {
		overlay.AdmissionWindowMS = cfg.AdmissionWindowMS
	}
	overlay.AdmissionWindow = time.Duration(overlay.AdmissionWindowMS) * time.Millisecond
	if overlay.AdmissionMax <= 0 {
		overlay.AdmissionMax = cfg.AdmissionMax
	}
	if overlay.Addr == "" {
		overlay.Addr = cfg.Addr
	}
	if overlay.Log.Level == "" {
		overlay.Log.Level = cfg.Log.Level
	}
	if overlay.Log.Path == "" {
		overlay.Log.Path = cfg.Log.Path
	}

	return overlay, nil
}
