package config

import "time"

// RateLimitConfig controls the fixed-window request limiter. Limit
// requests are allowed per Window per client IP and route.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads limiter settings from the environment.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Limit:   envInt("RATE_LIMIT_LIMIT", 60),
		Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	// The limiter buckets time by whole seconds, so a sub-second window
	// would truncate to a zero divisor.
	if cfg.Window < time.Second {
		cfg.Window = time.Second
	}
	return cfg
}
