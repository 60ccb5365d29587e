package testutils

import (
	"time"

	"github.com/tech-arch1tect/iam/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "iam-test",
			FrontendURL: "http://localhost:3000",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "console",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Auth: config.AuthConfig{
			MinLength:      8,
			RequireUpper:   true,
			RequireLower:   true,
			RequireNumber:  true,
			RequireSpecial: false,
			BcryptCost:     bcrypt.MinCost,
		},
		Verification: config.VerificationConfig{
			Secret:      "test-verification-secret",
			ExpiryHours: 24,
		},
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!!",
			Issuer:        "iam-test",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 7 * 24 * time.Hour,
		},
		Revocation: config.RevocationConfig{
			Enabled:       true,
			CleanupPeriod: time.Hour,
		},
		Mail: config.MailConfig{
			Host:        "localhost",
			Port:        2525,
			FromAddress: "noreply@example.com",
			FromName:    "IAM Test",
			Encryption:  "none",
			QueueSize:   8,
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}
}

var TestPasswords = struct {
	Valid    string
	TooShort string
	NoUpper  string
	NoLower  string
	NoNumber string
}{
	Valid:    "Password123",
	TooShort: "Pass1",
	NoUpper:  "password123",
	NoLower:  "PASSWORD123",
	NoNumber: "PasswordABC",
}
