package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.SessionTTLMinutes != 30 {
		t.Fatalf("SessionTTLMinutes = %d", cfg.SessionTTLMinutes)
	}
	if cfg.RedisConnectTimeout != 10 {
		t.Fatalf("RedisConnectTimeout = %d", cfg.RedisConnectTimeout)
	}
	if cfg.RedisRetrySeconds != 0 {
		t.Fatalf("RedisRetrySeconds = %d", cfg.RedisRetrySeconds)
	}
	if !cfg.SeedTestAccount {
		t.Fatal("SeedTestAccount should default to true outside release mode")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("REDIS_URL", "redis://example.com:6379/1")
	t.Setenv("SEED_TEST_ACCOUNT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.SessionTTLMinutes != 5 {
		t.Fatalf("SessionTTLMinutes = %d", cfg.SessionTTLMinutes)
	}
	if cfg.RedisURL != "redis://example.com:6379/1" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.SeedTestAccount {
		t.Fatal("SeedTestAccount should be overridable")
	}
}

func TestLoadIgnoresInvalidInt(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionTTLMinutes != 30 {
		t.Fatalf("SessionTTLMinutes = %d, want default", cfg.SessionTTLMinutes)
	}
}

func TestValidateRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative TTL")
	}
}

func TestReleaseModeDisablesTestAccount(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SEED_TEST_ACCOUNT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SeedTestAccount {
		t.Fatal("test account must not be seeded in release mode")
	}
}
