package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_KEY", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "searchuser-api" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "searchuser-api")
	}
	if cfg.JWTExpireMinutes != 30 {
		t.Errorf("JWTExpireMinutes = %d, want 30", cfg.JWTExpireMinutes)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.LoginRatePerMin != 10 {
		t.Errorf("LoginRatePerMin = %d, want 10", cfg.LoginRatePerMin)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_KEY", "test-secret")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("JWT_EXPIRE_MINUTES", "1")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.JWTExpireMinutes != 1 {
		t.Errorf("JWTExpireMinutes = %d, want 1", cfg.JWTExpireMinutes)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_MissingJWTKey(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_KEY is unset")
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_KEY", "test-secret")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range BCRYPT_COST")
	}
}

func TestExpireWindow(t *testing.T) {
	cfg := &Config{JWTExpireMinutes: 45}
	if got := cfg.ExpireWindow(); got != 45*time.Minute {
		t.Errorf("ExpireWindow = %v, want 45m", got)
	}

	cfg = &Config{}
	if got := cfg.ExpireWindow(); got != 30*time.Minute {
		t.Errorf("ExpireWindow zero = %v, want default 30m", got)
	}

	var nilCfg *Config
	if got := nilCfg.ExpireWindow(); got != 30*time.Minute {
		t.Errorf("ExpireWindow nil = %v, want default 30m", got)
	}
}
