package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the seat-map cache. When Enabled is false or no
// Redis client is available, seat maps are rendered on every request.
// TTL bounds staleness should an invalidation be lost.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads cache settings from the environment with
// defaults suitable for development.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "seatmap"),
	}
}

// Shared env helpers reused by the rate-limit config.

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
