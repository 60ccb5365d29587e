package jwt

import (
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/fx"
)

func ProvideJWTService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg, logger)
}

type OptionalRevocation struct {
	fx.In
	Revoker RevocationService `optional:"true"`
}

func WireRevocation(svc *Service, opt OptionalRevocation) {
	if opt.Revoker != nil {
		svc.SetRevocationService(opt.Revoker)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideJWTService),
	fx.Invoke(WireRevocation),
)
