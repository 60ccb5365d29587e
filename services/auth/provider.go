package auth

import (
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(db *gorm.DB) *Store {
	return NewStore(db)
}

func ProvideAuthService(cfg *config.Config, store *Store, tokens TokenGenerator, logger *logging.Service) *Service {
	return NewService(cfg, store, tokens, logger)
}

type OptionalNotifier struct {
	fx.In
	Notifier Notifier `optional:"true"`
}

func WireNotifier(svc *Service, opt OptionalNotifier) {
	if opt.Notifier != nil {
		svc.SetNotifier(opt.Notifier)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideAuthService),
	fx.Invoke(WireNotifier),
)
