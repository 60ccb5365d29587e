package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"IAM_APP_"`
	Server       ServerConfig       `envPrefix:"IAM_SERVER_"`
	Log          LogConfig          `envPrefix:"IAM_LOG_"`
	Database     DatabaseConfig     `envPrefix:"IAM_DB_"`
	Auth         AuthConfig         `envPrefix:"IAM_AUTH_"`
	Verification VerificationConfig `envPrefix:"IAM_VERIFICATION_"`
	JWT          JWTConfig          `envPrefix:"IAM_JWT_"`
	Revocation   RevocationConfig   `envPrefix:"IAM_REVOCATION_"`
	Mail         MailConfig         `envPrefix:"IAM_MAIL_"`
	RateLimit    RateLimitConfig    `envPrefix:"IAM_RATELIMIT_"`
	Bootstrap    BootstrapConfig    `envPrefix:"IAM_BOOTSTRAP_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"iam"`
	// FrontendURL is the base URL activation and reset links point at.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"iam.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type AuthConfig struct {
	MinLength      int  `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool `env:"PASSWORD_REQUIRE_UPPER" envDefault:"true"`
	RequireLower   bool `env:"PASSWORD_REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"false"`
	BcryptCost     int  `env:"BCRYPT_COST" envDefault:"12"`
}

type VerificationConfig struct {
	// Secret keys the HMAC over user state in activation and reset tokens.
	Secret      string `env:"SECRET"`
	ExpiryHours int    `env:"EXPIRY_HOURS" envDefault:"24"`
}

func (c VerificationConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type JWTConfig struct {
	SecretKey     string        `env:"SECRET_KEY"`
	Issuer        string        `env:"ISSUER" envDefault:"iam"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
}

type RevocationConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"true"`
	CleanupPeriod time.Duration `env:"CLEANUP_PERIOD" envDefault:"1h"`
}

type MailConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS"`
	FromName     string `env:"FROM_NAME"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates/mail"`
	QueueSize    int    `env:"QUEUE_SIZE" envDefault:"64"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"20"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

type BootstrapConfig struct {
	SuperuserEmail    string `env:"SUPERUSER_EMAIL"`
	SuperuserPassword string `env:"SUPERUSER_PASSWORD"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Verification.Validate(); err != nil {
		return err
	}
	return nil
}

func (c JWTConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("IAM_JWT_SECRET_KEY is required")
	}
	if len(c.SecretKey) < 32 {
		return fmt.Errorf("IAM_JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.AccessExpiry <= 0 || c.RefreshExpiry <= 0 {
		return fmt.Errorf("JWT token expiries must be positive")
	}
	return nil
}

func (c VerificationConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("IAM_VERIFICATION_SECRET is required")
	}
	if c.ExpiryHours <= 0 {
		return fmt.Errorf("IAM_VERIFICATION_EXPIRY_HOURS must be positive")
	}
	return nil
}
