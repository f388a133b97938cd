// Package config provides configuration helpers for asipanel commands.
// Values come from environment variables with sensible defaults; a .env
// file in the working directory is loaded first if present.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Default panel configuration.
const (
	DefaultListenPort  = "8000"
	DefaultCapturesDir = "captures"
	DefaultScheduleDB  = "camera_schedules.db"
	DefaultDeviceID    = 0
)

// Load reads a .env file if one exists. Missing files are not an error.
func Load() {
	_ = godotenv.Load()
}

// ListenPort returns the HTTP listen port from PANEL_PORT.
func ListenPort() string {
	if p := os.Getenv("PANEL_PORT"); p != "" {
		return p
	}
	return DefaultListenPort
}

// LogLevel returns the log level from PANEL_LOG_LEVEL.
func LogLevel() string {
	if l := os.Getenv("PANEL_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}

// CapturesDir returns the root directory for recorded frames.
func CapturesDir() string {
	if d := os.Getenv("PANEL_CAPTURES_DIR"); d != "" {
		return d
	}
	return DefaultCapturesDir
}

// ScheduleDBPath returns the SQLite database path for the capture scheduler.
func ScheduleDBPath() string {
	if p := os.Getenv("PANEL_SCHEDULE_DB"); p != "" {
		return p
	}
	return filepath.Join(".", DefaultScheduleDB)
}

// DeviceID returns the capture device index from PANEL_DEVICE_ID.
func DeviceID() int {
	if v := os.Getenv("PANEL_DEVICE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			return id
		}
	}
	return DefaultDeviceID
}

// CameraAPIURL returns the base URL of the camera settings API.
// The ROI notifier posts committed rectangles here. Defaults to the
// panel's own listen address so a single-process deployment works
// without configuration.
func CameraAPIURL() string {
	if u := os.Getenv("CAMERA_API_URL"); u != "" {
		return u
	}
	return "http://127.0.0.1:" + ListenPort()
}

// StaticDir returns the directory of the browser panel assets.
func StaticDir() string {
	if d := os.Getenv("PANEL_STATIC_DIR"); d != "" {
		return d
	}
	return "./static"
}
