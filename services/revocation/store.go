package revocation

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

// RevokedToken is the persisted form of a blacklist entry, keyed by the
// refresh token's JTI claim rather than the token itself.
type RevokedToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JTI       string    `json:"jti" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

type Store interface {
	Revoke(jti string, expiresAt time.Time) error

	IsRevoked(jti string) (bool, error)

	CleanupExpired() error

	LoadFromDatabase() error

	SaveToDatabase() error
}

// MemoryStore keeps the blacklist in memory for lookups on the hot path and
// mirrors entries into the database so revocations survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	db     *gorm.DB
	logger *logging.Service
}

func NewMemoryStore(db *gorm.DB, logger *logging.Service) *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]time.Time),
		db:     db,
		logger: logger,
	}
}

func (m *MemoryStore) Revoke(jti string, expiresAt time.Time) error {
	m.mu.Lock()
	m.tokens[jti] = expiresAt
	m.mu.Unlock()

	if m.db != nil {
		entry := RevokedToken{JTI: jti, ExpiresAt: expiresAt}
		if err := m.db.Create(&entry).Error; err != nil {
			if m.logger != nil {
				m.logger.Error("failed to persist revoked token",
					zap.String("jti", jti), zap.Error(err))
			}
			return fmt.Errorf("failed to persist revoked token: %w", err)
		}
	}

	if m.logger != nil {
		m.logger.Info("token blacklisted",
			zap.String("jti", jti), zap.Time("expires_at", expiresAt))
	}
	return nil
}

func (m *MemoryStore) IsRevoked(jti string) (bool, error) {
	m.mu.RLock()
	expiresAt, exists := m.tokens[jti]
	m.mu.RUnlock()

	if !exists {
		return false, nil
	}

	// expired entries are harmless: the token itself no longer verifies
	if time.Now().After(expiresAt) {
		m.mu.Lock()
		delete(m.tokens, jti)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}

func (m *MemoryStore) CleanupExpired() error {
	m.mu.Lock()
	now := time.Now()
	removed := 0
	for jti, expiresAt := range m.tokens {
		if now.After(expiresAt) {
			delete(m.tokens, jti)
			removed++
		}
	}
	m.mu.Unlock()

	if m.db != nil {
		result := m.db.Where("expires_at <= ?", now).Delete(&RevokedToken{})
		if result.Error != nil {
			return fmt.Errorf("failed to prune revoked tokens: %w", result.Error)
		}
	}

	if m.logger != nil && removed > 0 {
		m.logger.Info("pruned expired blacklist entries", zap.Int("removed", removed))
	}
	return nil
}

func (m *MemoryStore) LoadFromDatabase() error {
	if m.db == nil {
		return nil
	}

	var entries []RevokedToken
	if err := m.db.Where("expires_at > ?", time.Now()).Find(&entries).Error; err != nil {
		return fmt.Errorf("failed to load revoked tokens: %w", err)
	}

	m.mu.Lock()
	for _, entry := range entries {
		m.tokens[entry.JTI] = entry.ExpiresAt
	}
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("revoked tokens loaded from database", zap.Int("count", len(entries)))
	}
	return nil
}

func (m *MemoryStore) SaveToDatabase() error {
	if m.db == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	for jti, expiresAt := range m.tokens {
		if now.After(expiresAt) {
			continue
		}
		entry := RevokedToken{JTI: jti, ExpiresAt: expiresAt}
		err := m.db.Where("jti = ?", jti).FirstOrCreate(&entry).Error
		if err != nil {
			return fmt.Errorf("failed to save revoked token: %w", err)
		}
	}

	return nil
}
