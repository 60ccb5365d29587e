// Package usertoken issues and checks opaque tokens bound to a single user's
// credential state. A token is an HMAC-SHA256 over (user ID, password hash,
// issue timestamp): changing the password invalidates every outstanding
// token, and a token minted for one user never verifies for another.
// Wall-clock expiry is not enforced here; the verification record's
// modified-at anchor owns that.
package usertoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/iam/config"
	"github.com/tech-arch1tect/iam/services/logging"
	"go.uber.org/zap"
)

type Service struct {
	secret []byte
	logger *logging.Service

	// now is swappable for tests.
	now func() time.Time
}

func NewService(cfg *config.VerificationConfig, logger *logging.Service) *Service {
	return &Service{
		secret: []byte(cfg.Secret),
		logger: logger,
		now:    time.Now,
	}
}

// Make mints a token for the user's current credential state.
func (s *Service) Make(userID uuid.UUID, passwordHash string) string {
	ts := strconv.FormatInt(s.now().Unix(), 36)
	return ts + "-" + s.signature(userID, passwordHash, ts)
}

// Check reports whether token was minted by Make for the same user and
// password hash. Comparison is constant time.
func (s *Service) Check(userID uuid.UUID, passwordHash string, token string) bool {
	ts, sig, ok := strings.Cut(token, "-")
	if !ok || ts == "" || sig == "" {
		if s.logger != nil {
			s.logger.Debug("user token rejected: malformed")
		}
		return false
	}

	if _, err := strconv.ParseInt(ts, 36, 64); err != nil {
		if s.logger != nil {
			s.logger.Debug("user token rejected: bad timestamp")
		}
		return false
	}

	expected := s.signature(userID, passwordHash, ts)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		if s.logger != nil {
			s.logger.Debug("user token rejected: signature mismatch",
				zap.String("user_id", userID.String()))
		}
		return false
	}

	return true
}

func (s *Service) signature(userID uuid.UUID, passwordHash, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s|%s", userID, passwordHash, ts)
	return hex.EncodeToString(mac.Sum(nil))
}
