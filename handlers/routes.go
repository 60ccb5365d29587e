package handlers

import (
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/middleware/ratelimit"
	"github.com/tech-arch1tect/iam/server"
)

// RegisterRoutes mounts the account and token endpoints plus the OpenAPI
// document on the server.
func RegisterRoutes(srv *server.Server, cfg *config.Config, authHandler *AuthHandler, tokenHandler *TokenHandler) {
	authGroup := srv.Group("/auth")
	tokenGroup := srv.Group("/token")

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.Middleware(&ratelimit.Config{
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period,
		})
		authGroup.Use(limiter)
		tokenGroup.Use(limiter)
	}

	authGroup.POST("/users/register", authHandler.Register)
	authGroup.POST("/request-account-activation", authHandler.RequestAccountActivation)
	authGroup.POST("/account-verify", authHandler.VerifyAccount)
	authGroup.POST("/request-account-reset", authHandler.RequestAccountReset)
	authGroup.POST("/account-reset", authHandler.ResetAccountPassword)
	authGroup.POST("/logout", tokenHandler.Logout)

	tokenGroup.POST("/", tokenHandler.Obtain)
	tokenGroup.POST("/refresh/", tokenHandler.Refresh)
	tokenGroup.POST("/verify/", tokenHandler.Verify)

	doc := BuildAPIDoc()
	srv.Echo().GET("/openapi.json", doc.JSONHandler())
	srv.Echo().GET("/openapi.yaml", doc.YAMLHandler())
}
