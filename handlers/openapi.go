package handlers

import (
	"net/http"

	"github.com/tech-arch1tect/iam/openapi"
	"github.com/tech-arch1tect/iam/services/auth"
)

// BuildAPIDoc assembles the OpenAPI document for the account and token
// endpoints.
func BuildAPIDoc() *openapi.OpenAPI {
	doc := openapi.New("IAM API", "1.0.0").
		Description("User registration, account activation, password reset and JWT issuance.").
		Tag("accounts", "Registration, activation and password reset").
		Tag("tokens", "JWT issuance, refresh, verification and logout").
		BearerAuth("bearerAuth", "JWT access token")

	doc.Document(http.MethodPost, "/auth/users/register").
		Summary("Register a new account").
		OperationID("register").
		Tags("accounts").
		Body(RegisterRequest{}, "New account details").
		Response(http.StatusCreated, auth.User{}, "Account created, activation email queued").
		Response(http.StatusBadRequest, ErrorResponse{}, "Validation failure or email already in use").
		Build()

	doc.Document(http.MethodPost, "/auth/request-account-activation").
		Summary("Re-send the activation email").
		OperationID("requestAccountActivation").
		Tags("accounts").
		Body(UsernameRequest{}, "Email of the pending account").
		Response(http.StatusOK, MessageResponse{}, "Activation email sent").
		Response(http.StatusBadRequest, ErrorResponse{}, "No matching pending account").
		Build()

	doc.Document(http.MethodPost, "/auth/account-verify").
		Summary("Activate an account with an emailed token").
		OperationID("verifyAccount").
		Tags("accounts").
		Body(VerifyAccountRequest{}, "Activation token").
		Response(http.StatusOK, MessageResponse{}, "Account activated").
		Response(http.StatusBadRequest, ErrorResponse{}, "Invalid, expired or already-used token").
		Build()

	doc.Document(http.MethodPost, "/auth/request-account-reset").
		Summary("Send a password reset email").
		OperationID("requestAccountReset").
		Tags("accounts").
		Body(UsernameRequest{}, "Email of the account").
		Response(http.StatusOK, MessageResponse{}, "Reset email sent").
		Response(http.StatusBadRequest, ErrorResponse{}, "No matching active account").
		Response(http.StatusInternalServerError, ErrorResponse{}, "Reset email could not be delivered").
		Build()

	doc.Document(http.MethodPost, "/auth/account-reset").
		Summary("Set a new password with an emailed token").
		OperationID("resetAccountPassword").
		Tags("accounts").
		Body(ResetPasswordRequest{}, "New password plus the uid and token from the reset link").
		Response(http.StatusOK, MessageResponse{}, "Password replaced").
		Response(http.StatusBadRequest, ErrorResponse{}, "Invalid or expired token").
		Build()

	doc.Document(http.MethodPost, "/token/").
		Summary("Obtain a JWT pair for credentials").
		OperationID("obtainToken").
		Tags("tokens").
		Body(ObtainTokenRequest{}, "Account credentials").
		Response(http.StatusOK, TokenPairResponse{}, "Access and refresh tokens").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Unknown, wrong or inactive credentials").
		Build()

	doc.Document(http.MethodPost, "/token/refresh/").
		Summary("Rotate a refresh token into a new pair").
		OperationID("refreshToken").
		Tags("tokens").
		Body(RefreshTokenRequest{}, "Current refresh token").
		Response(http.StatusOK, TokenPairResponse{}, "New access and refresh tokens").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Invalid, expired or revoked refresh token").
		Build()

	doc.Document(http.MethodPost, "/token/verify/").
		Summary("Check whether a token is valid").
		OperationID("verifyToken").
		Tags("tokens").
		Body(VerifyTokenRequest{}, "Token to check").
		Response(http.StatusOK, map[string]any{}, "Token is valid").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Token is invalid or expired").
		Build()

	doc.Document(http.MethodPost, "/auth/logout").
		Summary("Blacklist a refresh token").
		OperationID("logout").
		Tags("tokens").
		Body(RefreshTokenRequest{}, "Refresh token to revoke").
		Response(http.StatusOK, MessageResponse{}, "Token blacklisted").
		Response(http.StatusBadRequest, ErrorResponse{}, "Token could not be revoked").
		Build()

	return doc
}
