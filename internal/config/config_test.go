package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PICTOR_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected server addr: %s", cfg.Server.Addr())
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite default driver, got %s", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected 1h token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.CORS.AllowedOrigin != "http://localhost:5173" {
		t.Errorf("unexpected CORS origin: %s", cfg.CORS.AllowedOrigin)
	}
	if cfg.Storage.Backend != "filesystem" {
		t.Errorf("expected filesystem storage default, got %s", cfg.Storage.Backend)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PICTOR_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("PICTOR_SERVER_PORT", "9000")
	t.Setenv("PICTOR_DATABASE_DRIVER", "postgres")
	t.Setenv("PICTOR_DATABASE_HOST", "db.internal")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected host db.internal, got %s", cfg.Database.Host)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8888
auth:
  jwt_secret: file-secret
  token_ttl: 30m
storage:
  backend: s3
  s3:
    bucket: pictor-images
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("expected port 8888, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Storage.S3.Bucket != "pictor-images" {
		t.Errorf("unexpected bucket: %s", cfg.Storage.S3.Bucket)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", Path: "./test.db"},
			Storage:  StorageConfig{Backend: "filesystem", DataDir: "./data"},
			Auth:     AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, BcryptCost: 10},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "bad bcrypt cost", mutate: func(c *Config) { c.Auth.BcryptCost = 99 }, wantErr: true},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.Host = ""
		}, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) {
			c.Storage.Backend = "s3"
			c.Storage.S3.Bucket = ""
		}, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "non-positive ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
