package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/iam/services/auth"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

// AuthHandler serves the registration, activation and password reset flows.
type AuthHandler struct {
	auth   *auth.Service
	logger *logging.Service
}

func NewAuthHandler(authService *auth.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	user, err := h.auth.Register(auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"email": "a user with this email already exists"},
			})
		case errors.Is(err, auth.ErrPasswordHashingFailed):
			h.logger.Error("registration failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		case errors.Is(err, auth.ErrPasswordPolicy):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"password": err.Error()},
			})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) RequestAccountActivation(c echo.Context) error {
	var req UsernameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	if err := h.auth.RequestActivation(req.Username); err != nil {
		if errors.Is(err, auth.ErrNoValidUser) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"username": "No valid user found"},
			})
		}
		h.logger.Error("activation request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Account activation email sent"})
}

func (h *AuthHandler) VerifyAccount(c echo.Context) error {
	var req VerifyAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	err := h.auth.VerifyAccount(req.Token)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, MessageResponse{Message: "Account verified successfully"})
	case errors.Is(err, auth.ErrAlreadyVerified):
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Account already verified"})
	case errors.Is(err, auth.ErrTokenExpired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Token has expired"})
	case errors.Is(err, auth.ErrTokenInvalid):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token"})
	default:
		h.logger.Error("account verification failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (h *AuthHandler) RequestAccountReset(c echo.Context) error {
	var req UsernameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	err := h.auth.RequestPasswordReset(req.Username)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset email sent"})
	case errors.Is(err, auth.ErrNoValidUser):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": map[string]string{"username": "No valid user found"},
		})
	case errors.Is(err, auth.ErrMailDeliveryFailed):
		h.logger.Error("reset email delivery failed", zap.String("email", req.Username))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error sending password reset email"})
	default:
		h.logger.Error("reset request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (h *AuthHandler) ResetAccountPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	err := h.auth.ResetPassword(req.Password, req.Uidb64, req.Token)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset successfully"})
	case errors.Is(err, auth.ErrTokenExpired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Token has expired"})
	case errors.Is(err, auth.ErrTokenInvalid):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token or UID"})
	case errors.Is(err, auth.ErrPasswordPolicy):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": map[string]string{"password": err.Error()},
		})
	default:
		h.logger.Error("password reset failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
