package auth

import (
	"context"

	"github.com/imshq/go-ims-server/internal/apierror"
	"github.com/imshq/go-ims-server/token"
	"github.com/imshq/go-ims-server/users"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationInput is the payload to start a new registration.
type RegistrationInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register creates an unverified account and issues a short-lived
// registration token for email verification.
func (s *Service) Register(ctx context.Context, in RegistrationInput) (*Identity, error) {
	email := users.NormaliseEmail(in.Email)

	_, err := s.repos.Users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apierror.BadRequest("An account is already registered with this email.")
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, errors.Wrap(err, "auth.Service.Register GetByEmail")
	}

	claims := &token.RegistrationClaims{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            email,
		RegisteredClaims: s.codec.StandardClaims(s.cfg.GetRecoveryTokenTTL()),
	}
	registrationToken, err := s.codec.Sign(claims, s.cfg.GetRecoveryTokenSecret())
	if err != nil {
		return nil, apierror.Forbidden("Registration token could not be signed.")
	}

	passwordHash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Register HashPassword")
	}

	user := users.New(in.FirstName, in.LastName, email, passwordHash)
	user.EmailVerification.Token = registrationToken
	if err := s.repos.Users.Upsert(ctx, user); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Register Upsert")
	}

	if err := s.notifier.VerificationRequested(ctx, email, user.FullName, registrationToken); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Register VerificationRequested")
	}

	return &Identity{ID: user.ID, Name: user.FullName, Email: email}, nil
}

// VerifyRegistration completes a registration using the mailed-out token.
func (s *Service) VerifyRegistration(ctx context.Context, registrationToken string) (*users.User, error) {
	if registrationToken == "" {
		return nil, apierror.BadRequest("Registration token is required")
	}

	var claims token.RegistrationClaims
	verification := s.codec.Verify(registrationToken, s.cfg.GetRecoveryTokenSecret(), &claims)
	if !verification.Valid {
		if verification.Expired {
			return nil, apierror.Forbidden("Token expired.")
		}
		return nil, apierror.Forbidden("Token is invalid.")
	}

	user, err := s.repos.Users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, users.ErrNotFound) {
		return nil, apierror.BadRequest("User not found.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.VerifyRegistration GetByEmail")
	}

	// A newer token may have been issued since this one went out.
	if user.EmailVerification.Token != registrationToken {
		return nil, apierror.BadRequest("Token is too old.")
	}

	verifiedAt := s.nowTime()
	verified := users.EmailVerification{
		Status:           users.VerificationVerified,
		VerificationDate: &verifiedAt,
	}
	if err := s.repos.Users.SetEmailVerification(ctx, user.ID, verified); err != nil {
		return nil, errors.Wrap(err, "auth.Service.VerifyRegistration SetEmailVerification")
	}

	user.EmailVerification = verified
	return user, nil
}

// ResendVerification re-issues the registration token for a pending account.
func (s *Service) ResendVerification(ctx context.Context, userID primitive.ObjectID) (*Identity, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, apierror.BadRequest("No user found with this id.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.ResendVerification GetByID")
	}
	if user.Verified() {
		return nil, apierror.BadRequest("User is already verified.")
	}

	claims := &token.RegistrationClaims{
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Email:            user.Email,
		RegisteredClaims: s.codec.StandardClaims(s.cfg.GetRecoveryTokenTTL()),
	}
	registrationToken, err := s.codec.Sign(claims, s.cfg.GetRecoveryTokenSecret())
	if err != nil {
		return nil, apierror.Forbidden("Registration token could not be signed.")
	}

	pending := users.EmailVerification{
		Token:  registrationToken,
		Status: users.VerificationPending,
	}
	if err := s.repos.Users.SetEmailVerification(ctx, user.ID, pending); err != nil {
		return nil, errors.Wrap(err, "auth.Service.ResendVerification SetEmailVerification")
	}

	if err := s.notifier.VerificationRequested(ctx, user.Email, user.FullName, registrationToken); err != nil {
		return nil, errors.Wrap(err, "auth.Service.ResendVerification VerificationRequested")
	}

	return &Identity{ID: user.ID, Name: user.FullName, Email: user.Email}, nil
}
