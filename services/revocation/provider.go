package revocation

import (
	"context"

	"github.com/tech-arch1tect/iam/config"
	jwtservice "github.com/tech-arch1tect/iam/services/jwt"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ProvideStore(cfg *config.Config, db *gorm.DB, logger *logging.Service) Store {
	if !cfg.Revocation.Enabled {
		return nil
	}
	return NewMemoryStore(db, logger)
}

func ProvideRevocationService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	if !cfg.Revocation.Enabled || store == nil {
		return nil
	}
	return NewService(cfg, store, logger)
}

func SetupRevocationLifecycle(lc fx.Lifecycle, cfg *config.Config, svc *Service, logger *logging.Service) {
	if svc == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := svc.store.LoadFromDatabase(); err != nil {
				logger.Error("failed to load blacklist on startup", zap.Error(err))
				return err
			}
			svc.StartCleanupWorker(cfg.Revocation.CleanupPeriod)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			svc.StopCleanupWorker()
			if err := svc.store.SaveToDatabase(); err != nil {
				logger.Error("failed to persist blacklist on shutdown", zap.Error(err))
				return err
			}
			return nil
		},
	})
}

func ProvideAsJWTInterface(svc *Service) jwtservice.RevocationService {
	if svc == nil {
		return nil
	}
	return svc
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRevocationService),
	fx.Provide(ProvideAsJWTInterface),
	fx.Invoke(SetupRevocationLifecycle),
)
