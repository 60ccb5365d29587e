package auth

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/iam/testutils"
	"gorm.io/gorm"
)

// stubTokens is a deterministic TokenGenerator: the token encodes exactly
// the state it was minted for.
type stubTokens struct{}

func (stubTokens) Make(userID uuid.UUID, passwordHash string) string {
	return fmt.Sprintf("%s:%s", userID, passwordHash)
}

func (stubTokens) Check(userID uuid.UUID, passwordHash string, token string) bool {
	return token == fmt.Sprintf("%s:%s", userID, passwordHash)
}

type fakeNotifier struct {
	activations []string
	resets      []string
	resetErr    error
}

func (f *fakeNotifier) SendActivation(email, token string) error {
	f.activations = append(f.activations, email)
	return nil
}

func (f *fakeNotifier) SendReset(email, uidb64, token string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *Store, *fakeNotifier) {
	db := testutils.SetupTestDB(t, &User{}, &VerificationRecord{})
	store := NewStore(db)
	svc := NewService(testutils.GetTestConfig(), store, stubTokens{}, nil)
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)
	return svc, store, notifier
}

func TestService_ValidatePassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	t.Run("valid password", func(t *testing.T) {
		assert.NoError(t, svc.ValidatePassword(testutils.TestPasswords.Valid))
	})

	t.Run("too short", func(t *testing.T) {
		err := svc.ValidatePassword(testutils.TestPasswords.TooShort)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPasswordPolicy)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("missing character classes are itemized", func(t *testing.T) {
		err := svc.ValidatePassword("alllowercase")
		require.ErrorIs(t, err, ErrPasswordPolicy)
		assert.Contains(t, err.Error(), "one uppercase letter")
		assert.Contains(t, err.Error(), "one number")
	})

	t.Run("no upper", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidatePassword(testutils.TestPasswords.NoUpper), ErrPasswordPolicy)
	})

	t.Run("no number", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidatePassword(testutils.TestPasswords.NoNumber), ErrPasswordPolicy)
	})
}

func TestService_HashAndVerifyPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	hash, err := svc.HashPassword(testutils.TestPasswords.Valid)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, testutils.TestPasswords.Valid, hash)

	assert.NoError(t, svc.VerifyPassword(hash, testutils.TestPasswords.Valid))
	assert.ErrorIs(t, svc.VerifyPassword(hash, "WrongPassword1"), ErrInvalidCredentials)
}

func TestService_Authenticate(t *testing.T) {
	svc, store, _ := newTestService(t)

	user, err := svc.Register(RegisterInput{
		Email:    "login@example.com",
		Password: testutils.TestPasswords.Valid,
	})
	require.NoError(t, err)

	t.Run("inactive account rejected", func(t *testing.T) {
		_, err := svc.Authenticate("login@example.com", testutils.TestPasswords.Valid)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("active account with right password", func(t *testing.T) {
		err := store.db.Model(&User{}).Where("id = ?", user.ID).Update("is_active", true).Error
		require.NoError(t, err)

		got, err := svc.Authenticate("login@example.com", testutils.TestPasswords.Valid)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.Authenticate("login@example.com", "WrongPassword1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected with same error", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", testutils.TestPasswords.Valid)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_EnsureSuperuser(t *testing.T) {
	svc, store, _ := newTestService(t)

	t.Run("blank email is a no-op", func(t *testing.T) {
		require.NoError(t, svc.EnsureSuperuser("", ""))

		var count int64
		require.NoError(t, store.db.Model(&User{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("creates an active verified superuser", func(t *testing.T) {
		require.NoError(t, svc.EnsureSuperuser("admin@example.com", testutils.TestPasswords.Valid))

		user, err := store.FindUserByEmail("admin@example.com")
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.True(t, user.IsSuperuser)

		var record VerificationRecord
		require.NoError(t, store.db.Where("user_id = ?", user.ID).First(&record).Error)
		assert.True(t, record.IsVerified)
		assert.Nil(t, record.Token)
	})

	t.Run("second call is idempotent", func(t *testing.T) {
		require.NoError(t, svc.EnsureSuperuser("admin@example.com", testutils.TestPasswords.Valid))

		var count int64
		require.NoError(t, store.db.Model(&User{}).Where("email = ?", "admin@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestStore_FindUserForGate(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Register(RegisterInput{
		Email:    "gate@example.com",
		Password: testutils.TestPasswords.Valid,
	})
	require.NoError(t, err)

	t.Run("inactive user matches the activation gate", func(t *testing.T) {
		user, record, err := store.FindUserForGate("gate@example.com", false)
		require.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.False(t, record.IsVerified)
	})

	t.Run("inactive user misses the reset gate", func(t *testing.T) {
		_, _, err := store.FindUserForGate("gate@example.com", true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("unknown email misses both gates", func(t *testing.T) {
		_, _, err := store.FindUserForGate("nobody@example.com", false)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, _, err = store.FindUserForGate("nobody@example.com", true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
