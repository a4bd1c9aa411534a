package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Runtime holds settings that may be overridden from the environment.
type Runtime struct {
	// Preset service
	Port        int
	PresetsFile string

	// Preset client
	ServerURL     string
	PresetTimeout time.Duration
	LocalPresets  string // fallback store used when the service is unreachable

	// Console
	MonitorAddr string // WebRTC monitor listen address, empty disables it
	LogFile     string
}

// Load reads runtime configuration from environment variables with sane defaults.
func Load() Runtime {
	return Runtime{
		Port:        envInt("JIVEDECK_PORT", 3001),
		PresetsFile: envStr("JIVEDECK_PRESETS_FILE", "presets.json"),

		ServerURL:     envStr("JIVEDECK_SERVER_URL", "http://localhost:3001"),
		PresetTimeout: envDuration("JIVEDECK_PRESET_TIMEOUT", 3*time.Second),
		LocalPresets:  envStr("JIVEDECK_LOCAL_PRESETS", defaultLocalPresets()),

		MonitorAddr: envStr("JIVEDECK_MONITOR", ""),
		LogFile:     envStr("JIVEDECK_LOG_FILE", "jivedeck.log"),
	}
}

func defaultLocalPresets() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "djPresets.json"
	}
	return filepath.Join(dir, "jivedeck", "djPresets.json")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("3s", "500ms") or bare seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return fallback
}
