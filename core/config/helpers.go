package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Settings returns the effective tunables shown on the status endpoints.
func Settings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":                 Global.App.Version,
		"app_debug":                   Global.App.Debug,
		"app_environment":             Global.App.Environment,
		"sticker_quality":             Global.Sticker.Quality,
		"sticker_video_limit_seconds": Global.Sticker.VideoLimitSeconds,
		"sticker_strict_ceiling":      Global.Sticker.StrictCeiling,
		"sticker_max_download_size":   Global.Sticker.MaxDownloadSize,
		"session_keepalive_interval":  Global.Session.KeepAliveInterval.String(),
		"session_max_reconnects":      Global.Session.MaxReconnectAttempts,
		"greeting_capacity":           Global.Greeting.Capacity,
		"greeting_ttl":                Global.Greeting.TTL.String(),
		"greeting_store":              greetingStore(),
	}
}

func greetingStore() string {
	if Global.Database.ValkeyEnabled {
		return "valkey"
	}
	return "memory"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
		logrus.Warnf("[CONFIG] Invalid integer for %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
		logrus.Warnf("[CONFIG] Invalid integer for %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return fallback
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	logrus.Warnf("[CONFIG] Invalid duration for %s=%q, using %s", key, v, fallback)
	return fallback
}
