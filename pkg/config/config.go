package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config holds the backend configuration
type Config struct {
	ListenPort       string        // Port the HTTP API listens on
	DatabasePath     string        // Path to the sqlite database file
	AdminKey         string        // Shared secret required on admin routes
	LogLevel         string        // Log level (debug, info, warn, error)
	OfflineThreshold time.Duration // Heartbeat staleness before a device counts as offline
	DedupWindow      time.Duration // Suppression window for duplicate alerts
	OffHoursStart    int           // Hour of day after which USB activity is off-hours (exclusive)
	OffHoursEnd      int           // Hour of day before which USB activity is off-hours (exclusive)
	EnableCORS       bool          // Allow cross-origin dashboard requests
	EnableStream     bool          // Enable the websocket alert stream
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() Config {
	return Config{
		ListenPort:       "8080",
		DatabasePath:     "data/sentinel.db",
		LogLevel:         "info",
		OfflineThreshold: 60 * time.Second,
		DedupWindow:      time.Hour,
		OffHoursStart:    22,
		OffHoursEnd:      6,
		EnableCORS:       true,
		EnableStream:     true,
	}
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(filePath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	return cfg, err
}
