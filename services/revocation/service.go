package revocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

var ErrStoreNotConfigured = errors.New("revocation store not configured")

type Service struct {
	config *config.Config
	store  Store
	logger *logging.Service
	stop   chan struct{}
}

func NewService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

func (s *Service) Revoke(jti string, expiresAt time.Time) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if err := s.store.Revoke(jti, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) IsRevoked(jti string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	revoked, err := s.store.IsRevoked(jti)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation status: %w", err)
	}
	return revoked, nil
}

func (s *Service) CleanupExpired() error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	return s.store.CleanupExpired()
}

// StartCleanupWorker prunes expired blacklist entries on a fixed period
// until StopCleanupWorker is called.
func (s *Service) StartCleanupWorker(interval time.Duration) {
	if s.store == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.CleanupExpired(); err != nil && s.logger != nil {
					s.logger.Error("blacklist cleanup failed", zap.Error(err))
				}
			case <-s.stop:
				return
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info("started blacklist cleanup worker", zap.Duration("interval", interval))
	}
}

func (s *Service) StopCleanupWorker() {
	close(s.stop)
}
