package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence boundary for users and their verification
// records. Handlers never touch gorm directly; every mutation the flows
// need is an explicit method here.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUserWithVerification creates the user and its verification record
// in one transaction so a user can never exist without exactly one record.
func (s *Store) CreateUserWithVerification(user *User, token string) (*VerificationRecord, error) {
	record := &VerificationRecord{
		Token:      &token,
		IsVerified: false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		record.UserID = user.ID
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create verification record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	record.User = user
	return record, nil
}

func (s *Store) FindUserByEmail(email string) (*User, error) {
	var user User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindUserByID(id uuid.UUID) (*User, error) {
	var user User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) EmailTaken(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return count > 0, nil
}

// FindUserForGate locates a user and its verification record in the state
// the activation and reset request flows require: both flags false for
// activation requests, both true for reset requests. Any miss collapses to
// gorm.ErrRecordNotFound so callers cannot leak which part failed.
func (s *Store) FindUserForGate(email string, shouldBeVerified bool) (*User, *VerificationRecord, error) {
	var user User
	err := s.db.Where("username = ? AND is_active = ?", email, shouldBeVerified).First(&user).Error
	if err != nil {
		return nil, nil, err
	}

	var record VerificationRecord
	err = s.db.Where("user_id = ? AND is_verified = ?", user.ID, shouldBeVerified).First(&record).Error
	if err != nil {
		return nil, nil, err
	}

	record.User = &user
	return &user, &record, nil
}

func (s *Store) FindVerificationByToken(token string) (*VerificationRecord, error) {
	var record VerificationRecord
	err := s.db.Preload("User").Where("token = ?", token).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) FindVerificationForReset(userID uuid.UUID, token string) (*VerificationRecord, error) {
	var record VerificationRecord
	err := s.db.Preload("User").
		Where("user_id = ? AND token = ? AND is_verified = ?", userID, token, true).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ReplaceToken overwrites the record's current token. The update also
// refreshes UpdatedAt, which restarts the expiry window.
func (s *Store) ReplaceToken(record *VerificationRecord, token string) error {
	err := s.db.Model(record).Updates(map[string]any{"token": token}).Error
	if err != nil {
		return fmt.Errorf("failed to replace verification token: %w", err)
	}
	record.Token = &token
	return nil
}

func (s *Store) ClearToken(record *VerificationRecord) error {
	err := s.db.Model(record).Update("token", gorm.Expr("NULL")).Error
	if err != nil {
		return fmt.Errorf("failed to clear verification token: %w", err)
	}
	record.Token = nil
	return nil
}

var ErrAlreadyMarkedVerified = errors.New("verification record already marked verified")

// MarkVerified flips is_verified false -> true with a conditional update so
// two concurrent verifications cannot both succeed, and activates the user
// in the same transaction.
func (s *Store) MarkVerified(record *VerificationRecord) error {
	now := time.Now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&VerificationRecord{}).
			Where("id = ? AND is_verified = ?", record.ID, false).
			Updates(map[string]any{"is_verified": true, "verified_at": now})
		if result.Error != nil {
			return fmt.Errorf("failed to mark record verified: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyMarkedVerified
		}

		err := tx.Model(&User{}).Where("id = ?", record.UserID).Update("is_active", true).Error
		if err != nil {
			return fmt.Errorf("failed to activate user: %w", err)
		}

		record.IsVerified = true
		record.VerifiedAt = &now
		return nil
	})
}

// ResetPassword stores the new hash and clears the spent token atomically.
func (s *Store) ResetPassword(record *VerificationRecord, passwordHash string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).Where("id = ?", record.UserID).Update("password", passwordHash).Error
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		err = tx.Model(record).Update("token", gorm.Expr("NULL")).Error
		if err != nil {
			return fmt.Errorf("failed to clear verification token: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	record.Token = nil
	return nil
}

func (s *Store) CreateSuperuser(user *User) error {
	now := time.Now()
	record := &VerificationRecord{
		IsVerified: true,
		VerifiedAt: &now,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create superuser: %w", err)
		}

		record.UserID = user.ID
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create superuser verification record: %w", err)
		}

		return nil
	})
}
