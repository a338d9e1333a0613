package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_LIMIT", "RATE_LIMIT_WINDOW", "RATE_LIMIT_PREFIX"} {
		t.Setenv(k, "")
	}
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
}

func TestLoadRateLimitConfigSubSecondWindow(t *testing.T) {
	// The limiter divides by the window in whole seconds; anything under
	// a second would truncate to a zero divisor.
	t.Setenv("RATE_LIMIT_WINDOW", "500ms")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, time.Second, cfg.Window)
}

func TestLoadRateLimitConfigNonPositiveValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "-1m")
	t.Setenv("RATE_LIMIT_LIMIT", "0")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, time.Second, cfg.Window)
	assert.Equal(t, 1, cfg.Limit)
}
