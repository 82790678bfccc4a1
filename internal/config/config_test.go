package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "claimsaver_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("SHARE_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.MongoDB.Database != "claimsaver_test" {
		t.Fatalf("unexpected database: %s", cfg.MongoDB.Database)
	}
	if cfg.Share.Secret == "" {
		t.Fatal("expected share secret to be loaded")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("CLERK_API_URL")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != "5001" {
		t.Fatalf("unexpected default port: %s", cfg.Server.Port)
	}
	if cfg.Clerk.APIURL != "https://api.clerk.com/v1" {
		t.Fatalf("unexpected default clerk api url: %s", cfg.Clerk.APIURL)
	}
	if cfg.RateLimit.Burst != 20 {
		t.Fatalf("unexpected default burst: %d", cfg.RateLimit.Burst)
	}
}
