package main

import (
	"testing"

	"warungpos/backend/internal/config"
)

func validBase() config.Config {
	return config.Config{
		StoreDriver:    config.DriverFile,
		DataDir:        "data",
		PricingPolicy:  "client",
		ExportTimezone: "UTC",
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	if err := validateConfig(validBase()); err != nil {
		t.Fatalf("expected defaults to pass, got %v", err)
	}

	cfg := validBase()
	cfg.StoreDriver = config.DriverPostgres
	cfg.DatabaseURL = "postgres://pos@localhost/pos"
	cfg.PricingPolicy = "catalog"
	cfg.ExportTimezone = "Asia/Jakarta"
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("expected postgres config to pass, got %v", err)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"unknown driver":        func(c *config.Config) { c.StoreDriver = "sqlite" },
		"postgres without url":  func(c *config.Config) { c.StoreDriver = config.DriverPostgres },
		"file without data dir": func(c *config.Config) { c.DataDir = "" },
		"unknown pricing":       func(c *config.Config) { c.PricingPolicy = "haggle" },
		"bad timezone":          func(c *config.Config) { c.ExportTimezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		cfg := validBase()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected config to be rejected", name)
		}
	}
}
