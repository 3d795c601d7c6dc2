package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig configures one token bucket limiter.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip, user, ip_user, ip_user_route
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the general limiter from RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
	return loadRateLimit("RATE_LIMIT", RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_user_route",
		Prefix:         "rl",
	})
}

// LoadSubmitRateLimitConfig reads the stricter limiter guarding draft
// submission from SUBMIT_RATE_LIMIT_* variables.
func LoadSubmitRateLimitConfig() RateLimitConfig {
	return loadRateLimit("SUBMIT_RATE_LIMIT", RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: 10 * time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user",
		Prefix:         "rl:submit",
	})
}

func loadRateLimit(env string, def RateLimitConfig) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool(env+"_ENABLED", def.Enabled),
		Capacity:       envInt(env+"_CAPACITY", def.Capacity),
		RefillTokens:   envInt(env+"_REFILL_TOKENS", def.RefillTokens),
		RefillInterval: envDur(env+"_REFILL_INTERVAL", def.RefillInterval),
		TTL:            envDur(env+"_TTL", def.TTL),
		KeyStrategy:    envStr(env+"_KEY_STRATEGY", def.KeyStrategy),
		Prefix:         envStr(env+"_PREFIX", def.Prefix),
		Debug:          envBool(env+"_DEBUG", false),
	}
	if b := envInt(env+"_BURST", -1); b > 0 {
		cfg.Capacity = b
	}
	if every := envDur(env+"_REFILL_EVERY", 0); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}
	return cfg.normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
