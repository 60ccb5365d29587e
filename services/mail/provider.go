package mail

import (
	"context"

	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/auth"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/fx"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(&cfg.Mail, logger)
}

func ProvideDispatcher(svc *Service, cfg *config.Config, logger *logging.Service) *Dispatcher {
	return NewDispatcher(svc, cfg, logger)
}

func ProvideAsNotifier(d *Dispatcher) auth.Notifier {
	return d
}

func SetupDispatcherLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
	fx.Provide(ProvideDispatcher),
	fx.Provide(ProvideAsNotifier),
	fx.Invoke(SetupDispatcherLifecycle),
)
