package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrMalformedToken   = errors.New("malformed JWT token")
	ErrInvalidSignature = errors.New("invalid JWT token signature")
	ErrTokenRevoked     = errors.New("JWT token has been revoked")
	ErrWrongTokenType   = errors.New("unexpected JWT token type")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RevocationService is the blacklist the refresh flow consults.
type RevocationService interface {
	IsRevoked(jti string) (bool, error)
	Revoke(jti string, expiresAt time.Time) error
}

type Service struct {
	config  *config.Config
	logger  *logging.Service
	revoker RevocationService
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) SetRevocationService(revoker RevocationService) {
	s.revoker = revoker
}

func (s *Service) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeAccess, s.config.JWT.AccessExpiry)
}

func (s *Service) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeRefresh, s.config.JWT.RefreshExpiry)
}

// GeneratePair issues a fresh access/refresh token pair.
func (s *Service) GeneratePair(userID uuid.UUID) (access string, refresh string, err error) {
	access, err = s.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}

	refresh, err = s.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (s *Service) generate(userID uuid.UUID, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		UserID:    userID.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   userID.String(),
			Audience:  []string{s.config.JWT.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign JWT token", zap.Error(err), zap.String("token_type", tokenType))
		}
		return "", fmt.Errorf("failed to generate JWT token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and verifies a token of either type. The algorithm
// is pinned to HS256; "none" and non-HMAC families are rejected outright.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.JWT.SecretKey), nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("JWT token validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateRefreshToken verifies a refresh token, including the blacklist.
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != TokenTypeRefresh {
		if s.logger != nil {
			s.logger.Warn("refresh validation failed: wrong token type",
				zap.String("token_type", claims.TokenType))
		}
		return nil, ErrWrongTokenType
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(claims.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to check token revocation status", zap.Error(err))
			}
		} else if revoked {
			if s.logger != nil {
				s.logger.Warn("refresh validation failed: token revoked", zap.String("jti", claims.ID))
			}
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// RefreshPair rotates a refresh token: the old token is blacklisted and a
// new pair is issued for the same user.
func (s *Service) RefreshPair(refreshTokenString string) (access string, refresh string, err error) {
	claims, err := s.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return "", "", err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	access, refresh, err = s.GeneratePair(userID)
	if err != nil {
		return "", "", err
	}

	if s.revoker != nil && claims.ExpiresAt != nil {
		if err := s.revoker.Revoke(claims.ID, claims.ExpiresAt.Time); err != nil && s.logger != nil {
			s.logger.Error("failed to blacklist rotated refresh token",
				zap.Error(err), zap.String("jti", claims.ID))
		}
	}

	return access, refresh, nil
}

// RevokeRefreshToken blacklists a refresh token until its natural expiry.
// Logout calls this; every failure mode maps to an invalid-token error.
func (s *Service) RevokeRefreshToken(refreshTokenString string) error {
	claims, err := s.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return err
	}

	if s.revoker == nil {
		if s.logger != nil {
			s.logger.Warn("logout requested but revocation service not available")
		}
		return nil
	}

	expiresAt := time.Now().Add(s.config.JWT.RefreshExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoker.Revoke(claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to blacklist refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token blacklisted", zap.String("jti", claims.ID))
	}
	return nil
}
