package config

import (
	"log"
	"os"
	"strconv"
)

// Int64FromEnv reads an integer environment variable. Unset means the
// fallback; a malformed value logs a warning and also falls back.
func Int64FromEnv(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value %q, defaulting to %d: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}
