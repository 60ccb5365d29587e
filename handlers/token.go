package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/iam/services/auth"
	"github.com/tech-arch1tect/iam/services/jwt"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

// TokenHandler serves JWT issuance, refresh, verification and logout.
type TokenHandler struct {
	auth   *auth.Service
	jwt    *jwt.Service
	logger *logging.Service
}

func NewTokenHandler(authService *auth.Service, jwtService *jwt.Service, logger *logging.Service) *TokenHandler {
	return &TokenHandler{
		auth:   authService,
		jwt:    jwtService,
		logger: logger,
	}
}

func (h *TokenHandler) Obtain(c echo.Context) error {
	var req ObtainTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	user, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error: "No active account found with the given credentials",
			})
		}
		h.logger.Error("token obtain failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}

	access, refresh, err := h.jwt.GeneratePair(user.ID)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
}

func (h *TokenHandler) Refresh(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	access, refresh, err := h.jwt.RefreshPair(req.Refresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Token is invalid or expired"})
	}

	return c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
}

func (h *TokenHandler) Verify(c echo.Context) error {
	var req VerifyTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	if _, err := h.jwt.ValidateToken(req.Token); err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Token is invalid or expired"})
	}

	return c.JSON(http.StatusOK, map[string]any{})
}

// Logout blacklists the presented refresh token. Every failure mode gets the
// same response so the endpoint does not leak token state.
func (h *TokenHandler) Logout(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token"})
	}

	if err := h.jwt.RevokeRefreshToken(req.Refresh); err != nil {
		h.logger.Warn("logout rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token"})
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}
