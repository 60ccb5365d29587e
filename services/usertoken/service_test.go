package usertoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/iam/testutils"
)

func newTestService() *Service {
	cfg := testutils.GetTestConfig()
	return NewService(&cfg.Verification, nil)
}

func TestService_Make(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	t.Run("token has timestamp and signature parts", func(t *testing.T) {
		token := service.Make(userID, "hash")

		require.NotEmpty(t, token)
		assert.Contains(t, token, "-")
	})

	t.Run("same state yields checkable token", func(t *testing.T) {
		token := service.Make(userID, "hash")

		assert.True(t, service.Check(userID, "hash", token))
	})
}

func TestService_Check(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	t.Run("different user fails", func(t *testing.T) {
		token := service.Make(userID, "hash")

		assert.False(t, service.Check(uuid.New(), "hash", token))
	})

	t.Run("different password hash fails", func(t *testing.T) {
		token := service.Make(userID, "hash-before")

		assert.False(t, service.Check(userID, "hash-after", token))
	})

	t.Run("different secret fails", func(t *testing.T) {
		token := service.Make(userID, "hash")

		cfg := testutils.GetTestConfig()
		cfg.Verification.Secret = "another-secret"
		other := NewService(&cfg.Verification, nil)

		assert.False(t, other.Check(userID, "hash", token))
	})

	t.Run("malformed tokens fail", func(t *testing.T) {
		for _, token := range []string{"", "no-separator-but-bad", "abc", "-", "abc-", "-def", "!!-deadbeef"} {
			assert.False(t, service.Check(userID, "hash", token), "token %q", token)
		}
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		token := service.Make(userID, "hash")

		tampered := token[:len(token)-1] + "0"
		if tampered == token {
			tampered = token[:len(token)-1] + "1"
		}
		assert.False(t, service.Check(userID, "hash", tampered))
	})

	t.Run("token minted earlier still checks", func(t *testing.T) {
		service := newTestService()
		service.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		token := service.Make(userID, "hash")

		// expiry is owned by the verification record, not the token
		assert.True(t, service.Check(userID, "hash", token))
	})
}
