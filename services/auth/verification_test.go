package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/iam/testutils"
)

func TestService_Register(t *testing.T) {
	svc, store, notifier := newTestService(t)

	t.Run("creates inactive user with pending verification record", func(t *testing.T) {
		user, err := svc.Register(RegisterInput{
			Email:     "new@example.com",
			Password:  testutils.TestPasswords.Valid,
			FirstName: "New",
			LastName:  "User",
		})
		require.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.Equal(t, "new@example.com", user.Username)

		var record VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&record).Error)
		assert.False(t, record.IsVerified)
		require.NotNil(t, record.Token)
		assert.NotEmpty(t, *record.Token)

		assert.Equal(t, []string{"new@example.com"}, notifier.activations)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(RegisterInput{
			Email:    "new@example.com",
			Password: testutils.TestPasswords.Valid,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("weak password rejected before any write", func(t *testing.T) {
		_, err := svc.Register(RegisterInput{
			Email:    "weak@example.com",
			Password: testutils.TestPasswords.TooShort,
		})
		require.ErrorIs(t, err, ErrPasswordPolicy)

		taken, err := store.EmailTaken("weak@example.com")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		user, err := store.FindUserByEmail("new@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, testutils.TestPasswords.Valid, user.Password)
		assert.NoError(t, svc.VerifyPassword(user.Password, testutils.TestPasswords.Valid))
	})
}

func TestService_VerifyAccount(t *testing.T) {
	svc, store, _ := newTestService(t)

	user, err := svc.Register(RegisterInput{
		Email:    "verify@example.com",
		Password: testutils.TestPasswords.Valid,
	})
	require.NoError(t, err)

	var record VerificationRecord
	require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&record).Error)
	token := *record.Token

	t.Run("unknown token", func(t *testing.T) {
		assert.ErrorIs(t, svc.VerifyAccount("no-such-token"), ErrTokenInvalid)
	})

	t.Run("valid token activates the account", func(t *testing.T) {
		require.NoError(t, svc.VerifyAccount(token))

		updated, err := store.FindUserByID(user.ID)
		require.NoError(t, err)
		assert.True(t, updated.IsActive)

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
		assert.True(t, rec.IsVerified)
		require.NotNil(t, rec.VerifiedAt)
	})

	t.Run("second use reports already verified", func(t *testing.T) {
		assert.ErrorIs(t, svc.VerifyAccount(token), ErrAlreadyVerified)
	})

	t.Run("expired token", func(t *testing.T) {
		other, err := svc.Register(RegisterInput{
			Email:    "expired@example.com",
			Password: testutils.TestPasswords.Valid,
		})
		require.NoError(t, err)

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", other.ID).First(&rec).Error)

		stale := time.Now().Add(-25 * time.Hour)
		require.NoError(t, store.db.Model(&rec).UpdateColumn("updated_at", stale).Error)

		assert.ErrorIs(t, svc.VerifyAccount(*rec.Token), ErrTokenExpired)
	})

	t.Run("password change invalidates the token", func(t *testing.T) {
		other, err := svc.Register(RegisterInput{
			Email:    "stale-token@example.com",
			Password: testutils.TestPasswords.Valid,
		})
		require.NoError(t, err)

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", other.ID).First(&rec).Error)
		token := *rec.Token

		require.NoError(t, store.db.Model(&User{}).Where("id = ?", other.ID).
			UpdateColumn("password", "different-hash").Error)

		assert.ErrorIs(t, svc.VerifyAccount(token), ErrTokenInvalid)
	})
}

func TestService_RequestActivation(t *testing.T) {
	svc, store, notifier := newTestService(t)

	user, err := svc.Register(RegisterInput{
		Email:    "resend@example.com",
		Password: testutils.TestPasswords.Valid,
	})
	require.NoError(t, err)

	t.Run("re-issues token and restarts the expiry window", func(t *testing.T) {
		var before VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&before).Error)

		stale := time.Now().Add(-48 * time.Hour)
		require.NoError(t, store.db.Model(&before).UpdateColumn("updated_at", stale).Error)

		require.NoError(t, svc.RequestActivation("resend@example.com"))

		var after VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&after).Error)
		require.NotNil(t, after.Token)
		assert.False(t, after.IsExpired(testutils.GetTestConfig().Verification.Expiry()))

		assert.Contains(t, notifier.activations, "resend@example.com")
	})

	t.Run("already active account rejected", func(t *testing.T) {
		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
		require.NoError(t, svc.VerifyAccount(*rec.Token))

		assert.ErrorIs(t, svc.RequestActivation("resend@example.com"), ErrNoValidUser)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.RequestActivation("nobody@example.com"), ErrNoValidUser)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	svc, store, notifier := newTestService(t)

	user := registerAndActivate(t, svc, store, "reset@example.com")

	t.Run("inactive account rejected", func(t *testing.T) {
		_, err := svc.Register(RegisterInput{
			Email:    "pending@example.com",
			Password: testutils.TestPasswords.Valid,
		})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.RequestPasswordReset("pending@example.com"), ErrNoValidUser)
	})

	t.Run("issues token and sends reset mail", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset("reset@example.com"))

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
		require.NotNil(t, rec.Token)
		assert.True(t, rec.IsVerified)

		assert.Equal(t, []string{"reset@example.com"}, notifier.resets)
	})

	t.Run("delivery failure clears the token", func(t *testing.T) {
		notifier.resetErr = assert.AnError
		defer func() { notifier.resetErr = nil }()

		err := svc.RequestPasswordReset("reset@example.com")
		assert.ErrorIs(t, err, ErrMailDeliveryFailed)

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
		assert.Nil(t, rec.Token)
	})
}

func TestService_ResetPassword(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := registerAndActivate(t, svc, store, "newpass@example.com")
	require.NoError(t, svc.RequestPasswordReset("newpass@example.com"))

	var rec VerificationRecord
	require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
	token := *rec.Token
	uidb64 := EncodeUserID(user.ID)

	t.Run("garbage uidb64", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPassword("NewPassword1", "!!!", token), ErrTokenInvalid)
	})

	t.Run("uidb64 for unknown user", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPassword("NewPassword1", EncodeUserID(uuid.New()), token), ErrTokenInvalid)
	})

	t.Run("wrong token", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPassword("NewPassword1", uidb64, "wrong-token"), ErrTokenInvalid)
	})

	t.Run("weak replacement password rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPassword(testutils.TestPasswords.TooShort, uidb64, token), ErrPasswordPolicy)
	})

	t.Run("valid reset replaces password and clears token", func(t *testing.T) {
		require.NoError(t, svc.ResetPassword("NewPassword1", uidb64, token))

		updated, err := store.FindUserByID(user.ID)
		require.NoError(t, err)
		assert.NoError(t, svc.VerifyPassword(updated.Password, "NewPassword1"))

		var after VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&after).Error)
		assert.Nil(t, after.Token)
		assert.True(t, after.IsVerified)
	})

	t.Run("spent token cannot be replayed", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPassword("OtherPassword1", uidb64, token), ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset("newpass@example.com"))

		var rec VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)

		stale := time.Now().Add(-25 * time.Hour)
		require.NoError(t, store.db.Model(&rec).UpdateColumn("updated_at", stale).Error)

		assert.ErrorIs(t, svc.ResetPassword("OtherPassword1", uidb64, *rec.Token), ErrTokenExpired)
	})
}

func TestVerificationRecord_IsExpired(t *testing.T) {
	window := 24 * time.Hour

	t.Run("fresh record", func(t *testing.T) {
		rec := VerificationRecord{UpdatedAt: time.Now()}
		assert.False(t, rec.IsExpired(window))
	})

	t.Run("exactly at the boundary is not expired", func(t *testing.T) {
		anchor := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		rec := VerificationRecord{UpdatedAt: anchor}

		assert.False(t, rec.expiredAt(anchor.Add(window), window))
		assert.True(t, rec.expiredAt(anchor.Add(window+time.Nanosecond), window))
	})

	t.Run("past the boundary", func(t *testing.T) {
		rec := VerificationRecord{UpdatedAt: time.Now().Add(-window - time.Second)}
		assert.True(t, rec.IsExpired(window))
	})
}

func TestEncodeDecodeUserID(t *testing.T) {
	id := uuid.New()

	encoded := EncodeUserID(id)
	require.NotEmpty(t, encoded)
	assert.NotContains(t, encoded, "=")

	decoded, err := DecodeUserID(encoded)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = DecodeUserID("not base64 !!!")
	assert.Error(t, err)
}

func registerAndActivate(t *testing.T, svc *Service, store *Store, email string) *User {
	t.Helper()

	user, err := svc.Register(RegisterInput{
		Email:    email,
		Password: testutils.TestPasswords.Valid,
	})
	require.NoError(t, err)

	var rec VerificationRecord
	require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&rec).Error)
	require.NoError(t, svc.VerifyAccount(*rec.Token))

	return user
}
