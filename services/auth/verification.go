package auth

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an inactive user plus its verification record and queues
// the activation email. The username is always the email.
func (s *Service) Register(input RegisterInput) (*User, error) {
	if s.logger != nil {
		s.logger.Info("registering user", zap.String("email", input.Email))
	}

	taken, err := s.store.EmailTaken(input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		if s.logger != nil {
			s.logger.Warn("registration rejected: email taken", zap.String("email", input.Email))
		}
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:        uuid.New(),
		Email:     input.Email,
		Username:  input.Email,
		Password:  hash,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  false,
	}

	token := s.tokens.Make(user.ID, hash)

	if _, err := s.store.CreateUserWithVerification(user, token); err != nil {
		return nil, err
	}

	// Delivery is queued; a full queue or down relay must not fail the
	// registration, the user can re-request activation.
	if s.notifier != nil {
		if err := s.notifier.SendActivation(user.Email, token); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to queue activation email",
					zap.Error(err), zap.String("email", user.Email))
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("user registered", zap.String("email", user.Email), zap.String("user_id", user.ID.String()))
	}
	return user, nil
}

// RequestActivation re-issues an activation token for an inactive,
// unverified account and re-sends the activation email.
func (s *Service) RequestActivation(email string) error {
	user, record, err := s.store.FindUserForGate(email, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("activation request rejected: no inactive user", zap.String("email", email))
			}
			return ErrNoValidUser
		}
		return fmt.Errorf("failed to resolve activation request: %w", err)
	}

	token := s.tokens.Make(user.ID, user.Password)
	if err := s.store.ReplaceToken(record, token); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendActivation(user.Email, token); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to queue activation email",
					zap.Error(err), zap.String("email", user.Email))
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("activation token re-issued", zap.String("email", email))
	}
	return nil
}

// VerifyAccount consumes an activation token: pending -> activated, exactly
// once. Check order is fixed: existence, expiry, signature, replay.
func (s *Service) VerifyAccount(token string) error {
	record, err := s.store.FindVerificationByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("verification rejected: unknown token")
			}
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if record.IsExpired(s.config.Verification.Expiry()) {
		if s.logger != nil {
			s.logger.Warn("verification rejected: token expired",
				zap.String("user_id", record.UserID.String()))
		}
		return ErrTokenExpired
	}

	if record.User == nil || !s.tokens.Check(record.UserID, record.User.Password, token) {
		if s.logger != nil {
			s.logger.Warn("verification rejected: token failed signature check",
				zap.String("user_id", record.UserID.String()))
		}
		return ErrTokenInvalid
	}

	if record.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.store.MarkVerified(record); err != nil {
		// a concurrent request won the conditional update
		if errors.Is(err, ErrAlreadyMarkedVerified) {
			return ErrAlreadyVerified
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("account verified",
			zap.String("user_id", record.UserID.String()))
	}
	return nil
}

// RequestPasswordReset issues a reset token for an already-activated
// account. The token is persisted before the email goes out; on delivery
// failure the token is cleared again so no orphaned reset window stays
// open, and the caller sees ErrMailDeliveryFailed.
func (s *Service) RequestPasswordReset(email string) error {
	user, record, err := s.store.FindUserForGate(email, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("reset request rejected: no active user", zap.String("email", email))
			}
			return ErrNoValidUser
		}
		return fmt.Errorf("failed to resolve reset request: %w", err)
	}

	token := s.tokens.Make(user.ID, user.Password)
	uidb64 := EncodeUserID(user.ID)

	if err := s.store.ReplaceToken(record, token); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendReset(user.Email, uidb64, token); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to send reset email",
					zap.Error(err), zap.String("email", user.Email))
			}
			if clearErr := s.store.ClearToken(record); clearErr != nil && s.logger != nil {
				s.logger.Error("failed to clear reset token after delivery failure",
					zap.Error(clearErr), zap.String("email", user.Email))
			}
			return ErrMailDeliveryFailed
		}
	}

	if s.logger != nil {
		s.logger.Info("reset token issued", zap.String("email", email))
	}
	return nil
}

// ResetPassword consumes a reset token. A bad uidb64 defers to the record
// lookup so every failure mode reads the same to the caller. IsVerified is
// left true: it is a permanent has-ever-activated flag.
func (s *Service) ResetPassword(newPassword, uidb64, token string) error {
	var user *User
	if id, err := DecodeUserID(uidb64); err == nil {
		if found, err := s.store.FindUserByID(id); err == nil {
			user = found
		}
	}
	if user == nil {
		if s.logger != nil {
			s.logger.Warn("reset rejected: uidb64 resolves to no user")
		}
		return ErrTokenInvalid
	}

	record, err := s.store.FindVerificationForReset(user.ID, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("reset rejected: no matching verification record",
					zap.String("user_id", user.ID.String()))
			}
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if record.IsExpired(s.config.Verification.Expiry()) {
		if s.logger != nil {
			s.logger.Warn("reset rejected: token expired", zap.String("user_id", user.ID.String()))
		}
		return ErrTokenExpired
	}

	if !s.tokens.Check(user.ID, user.Password, token) {
		if s.logger != nil {
			s.logger.Warn("reset rejected: token failed signature check",
				zap.String("user_id", user.ID.String()))
		}
		return ErrTokenInvalid
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.store.ResetPassword(record, hash); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("password reset completed", zap.String("user_id", user.ID.String()))
	}
	return nil
}

// EncodeUserID renders a user ID as the URL-safe base64 string embedded in
// reset links.
func EncodeUserID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

func DecodeUserID(uidb64 string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uidb64: %w", err)
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	return id, nil
}
