package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "kiganjani_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.OTP.MaxAttempts != 3 {
		t.Fatalf("expected default OTP max attempts 3, got %d", cfg.OTP.MaxAttempts)
	}
	if cfg.JWT.AccessTokenTTL.Minutes() != 15 {
		t.Fatalf("unexpected default access token TTL: %v", cfg.JWT.AccessTokenTTL)
	}
}
