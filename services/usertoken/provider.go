package usertoken

import (
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/auth"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/fx"
)

func ProvideUserTokenService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(&cfg.Verification, logger)
}

func ProvideAsTokenGenerator(svc *Service) auth.TokenGenerator {
	return svc
}

var Module = fx.Options(
	fx.Provide(ProvideUserTokenService),
	fx.Provide(ProvideAsTokenGenerator),
)
