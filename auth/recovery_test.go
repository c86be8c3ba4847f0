package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/imshq/go-ims-server/users"
	"github.com/stretchr/testify/require"
)

func TestStartRecoveryStoresToken(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword)

	email, err := f.service.StartRecovery(context.Background(), "John.Doe@Example.com")
	require.NoError(t, err)
	require.Equal(t, testUserEmail, email)

	stored, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.RecoveryToken)
}

func TestStartRecoveryUnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.StartRecovery(context.Background(), "nobody@example.com")
	requireAPIError(t, err, 400, "User not found.")
}

func TestRecoverAccount(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword)

	// An active session that must not survive the password reset.
	signature, err := f.service.Authenticate(context.Background(), "", testUserEmail, testUserPassword, testUserAgent)
	require.NoError(t, err)
	require.NotEmpty(t, f.ledger(t, user.ID))

	_, err = f.service.StartRecovery(context.Background(), testUserEmail)
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.RecoverAccount(context.Background(), stored.RecoveryToken, "new-password-456"))

	updated, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("new-password-456", updated.PasswordHash))
	require.Empty(t, updated.RecoveryToken)
	require.Empty(t, updated.RefreshTokens)

	// The revoked session's refresh token now takes the reuse path.
	_, err = f.service.Refresh(context.Background(), signature.RefreshToken, nil)
	requireAPIError(t, err, 400, "Reuse of refresh token.")
}

func TestRecoverAccountExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword)

	_, err := f.service.StartRecovery(context.Background(), testUserEmail)
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	f.now = f.now.Add(11 * time.Minute)

	err = f.service.RecoverAccount(context.Background(), stored.RecoveryToken, "new-password-456")
	requireAPIError(t, err, 403, "Token expired.")
}

func TestRecoverAccountSupersededToken(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword)

	_, err := f.service.StartRecovery(context.Background(), testUserEmail)
	require.NoError(t, err)
	first, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	_, err = f.service.StartRecovery(context.Background(), testUserEmail)
	require.NoError(t, err)

	err = f.service.RecoverAccount(context.Background(), first.RecoveryToken, "new-password-456")
	requireAPIError(t, err, 403, "Token is too old.")
}

func TestRecoverAccountMissingToken(t *testing.T) {
	f := setupTestFixture(t)

	err := f.service.RecoverAccount(context.Background(), "", "new-password-456")
	requireAPIError(t, err, 400, "Recovery token is required")
}
