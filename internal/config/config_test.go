package config

import (
	"os"
	"testing"
)

// unsetEnv removes key for the duration of the test; envconfig treats a set
// but empty variable as a value, not as missing.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "PRICING_POLICY"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":3000" {
		t.Fatalf("expected default address :3000, got %q", cfg.Address())
	}
	if cfg.StoreDriver != DriverFile {
		t.Fatalf("expected file driver by default, got %q", cfg.StoreDriver)
	}
	if cfg.PricingPolicy != "client" {
		t.Fatalf("expected client pricing policy by default, got %q", cfg.PricingPolicy)
	}
}

func TestLoadClampsCacheTTL(t *testing.T) {
	t.Setenv("ANALYTICS_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnalyticsCacheTTLSeconds != 30 {
		t.Fatalf("expected ttl clamped to 30, got %d", cfg.AnalyticsCacheTTLSeconds)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	if _, err := Load(); err == nil {
		t.Fatalf("expected malformed REDIS_DB to be rejected")
	}
}
