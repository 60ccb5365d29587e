package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrPasswordPolicy        = errors.New("password does not meet requirements")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountInactive       = errors.New("account is not active")
	ErrEmailTaken            = errors.New("a user with this email already exists")
	ErrNoValidUser           = errors.New("no valid user found")
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token has expired")
	ErrAlreadyVerified       = errors.New("account already verified")
	ErrMailDeliveryFailed    = errors.New("failed to send email")
)

// TokenGenerator mints and checks user-bound signed tokens for the
// activation and reset flows.
type TokenGenerator interface {
	Make(userID uuid.UUID, passwordHash string) string
	Check(userID uuid.UUID, passwordHash string, token string) bool
}

// Notifier delivers templated account emails. SendActivation is expected to
// be asynchronous; SendReset must report delivery failure to the caller.
type Notifier interface {
	SendActivation(email, token string) error
	SendReset(email, uidb64, token string) error
}

type Service struct {
	config   *config.Config
	store    *Store
	tokens   TokenGenerator
	notifier Notifier
	logger   *logging.Service
}

func NewService(cfg *config.Config, store *Store, tokens TokenGenerator, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		if s.logger != nil {
			s.logger.Warn("password validation failed: insufficient length",
				zap.Int("length", len(password)),
				zap.Int("min_required", s.config.Auth.MinLength))
		}
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordPolicy, s.config.Auth.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	var missing []string

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		if s.logger != nil {
			s.logger.Warn("password validation failed: missing requirements",
				zap.Strings("missing_requirements", missing))
		}
		return fmt.Errorf("%w: must contain at least %s", ErrPasswordPolicy, strings.Join(missing, ", "))
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate resolves credentials to a user for session issuance.
// Inactive accounts cannot log in; callers get the same generic error as
// for a wrong password so the response does not reveal account state.
func (s *Service) Authenticate(email, password string) (*User, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("authentication failed: unknown email", zap.String("email", email))
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.VerifyPassword(user.Password, password); err != nil {
		if s.logger != nil {
			s.logger.Warn("authentication failed: wrong password", zap.String("email", email))
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		if s.logger != nil {
			s.logger.Warn("authentication failed: inactive account", zap.String("email", email))
		}
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureSuperuser idempotently creates an active, pre-verified superuser
// from bootstrap config. A blank email disables bootstrapping.
func (s *Service) EnsureSuperuser(email, password string) error {
	if email == "" {
		return nil
	}

	_, err := s.store.FindUserByEmail(email)
	if err == nil {
		if s.logger != nil {
			s.logger.Debug("superuser already exists", zap.String("email", email))
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up superuser: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("superuser password rejected: %w", err)
	}

	user := &User{
		Email:       email,
		Username:    email,
		Password:    hash,
		IsActive:    true,
		IsSuperuser: true,
	}

	if err := s.store.CreateSuperuser(user); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("superuser created", zap.String("email", email))
	}
	return nil
}
