package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/imshq/go-ims-server/auth"
	"github.com/imshq/go-ims-server/users"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterCreatesPendingUser(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.service.Register(context.Background(), auth.RegistrationInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "Jane.Doe@Example.com",
		Password:  testUserPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", identity.Name)
	require.Equal(t, "jane.doe@example.com", identity.Email)

	user, err := f.userRepo.GetByEmail(context.Background(), "jane.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, users.VerificationPending, user.EmailVerification.Status)
	require.NotEmpty(t, user.EmailVerification.Token)
	require.True(t, users.CheckPasswordHash(testUserPassword, user.PasswordHash))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, testUserPassword)

	_, err := f.service.Register(context.Background(), auth.RegistrationInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     testUserEmail,
		Password:  testUserPassword,
	})
	requireAPIError(t, err, 400, "An account is already registered with this email.")
}

func TestVerifyRegistration(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.service.Register(context.Background(), auth.RegistrationInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Password:  testUserPassword,
	})
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), identity.ID)
	require.NoError(t, err)

	verified, err := f.service.VerifyRegistration(context.Background(), stored.EmailVerification.Token)
	require.NoError(t, err)
	require.Equal(t, users.VerificationVerified, verified.EmailVerification.Status)
	require.NotNil(t, verified.EmailVerification.VerificationDate)
	require.Empty(t, verified.EmailVerification.Token)
}

func TestVerifyRegistrationExpiredToken(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.service.Register(context.Background(), auth.RegistrationInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Password:  testUserPassword,
	})
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), identity.ID)
	require.NoError(t, err)

	f.now = f.now.Add(11 * time.Minute)

	_, err = f.service.VerifyRegistration(context.Background(), stored.EmailVerification.Token)
	requireAPIError(t, err, 403, "Token expired.")
}

func TestVerifyRegistrationSupersededToken(t *testing.T) {
	f := setupTestFixture(t)

	identity, err := f.service.Register(context.Background(), auth.RegistrationInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Password:  testUserPassword,
	})
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), identity.ID)
	require.NoError(t, err)
	oldToken := stored.EmailVerification.Token

	// Resending replaces the stored token; move the clock so the re-signed
	// token differs from the original.
	f.now = f.now.Add(time.Minute)
	_, err = f.service.ResendVerification(context.Background(), identity.ID)
	require.NoError(t, err)

	_, err = f.service.VerifyRegistration(context.Background(), oldToken)
	requireAPIError(t, err, 400, "Token is too old.")
}

func TestVerifyRegistrationMissingToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.VerifyRegistration(context.Background(), "")
	requireAPIError(t, err, 400, "Registration token is required")
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword)

	now := time.Now()
	require.NoError(t, f.userRepo.SetEmailVerification(context.Background(), user.ID, users.EmailVerification{
		Status:           users.VerificationVerified,
		VerificationDate: &now,
	}))

	_, err := f.service.ResendVerification(context.Background(), user.ID)
	requireAPIError(t, err, 400, "User is already verified.")
}

func TestResendVerificationUnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.ResendVerification(context.Background(), primitive.NewObjectID())
	requireAPIError(t, err, 400, "No user found with this id.")
}
