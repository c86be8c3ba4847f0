package auth

import (
	"context"

	"github.com/imshq/go-ims-server/internal/apierror"
	"github.com/imshq/go-ims-server/token"
	"github.com/imshq/go-ims-server/users"
	"github.com/pkg/errors"
)

// StartRecovery issues a short-lived recovery token for the account and
// stores it on the user record so only the latest one is honoured.
func (s *Service) StartRecovery(ctx context.Context, email string) (string, error) {
	email = users.NormaliseEmail(email)

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return "", apierror.BadRequest("User not found.")
	}
	if err != nil {
		return "", errors.Wrap(err, "auth.Service.StartRecovery GetByEmail")
	}

	claims := &token.RecoveryClaims{
		UserID:           user.ID,
		RegisteredClaims: s.codec.StandardClaims(s.cfg.GetRecoveryTokenTTL()),
	}
	recoveryToken, err := s.codec.Sign(claims, s.cfg.GetRecoveryTokenSecret())
	if err != nil {
		return "", apierror.BadRequest("Recovery token could not be signed.")
	}

	if err := s.notifier.RecoveryRequested(ctx, email, user.FullName, recoveryToken); err != nil {
		return "", errors.Wrap(err, "auth.Service.StartRecovery RecoveryRequested")
	}
	if err := s.repos.Users.SetRecoveryToken(ctx, user.ID, recoveryToken); err != nil {
		return "", errors.Wrap(err, "auth.Service.StartRecovery SetRecoveryToken")
	}

	return email, nil
}

// RecoverAccount sets a new password after validating the recovery token.
// All outstanding refresh tokens are revoked so stolen sessions do not
// survive a password reset.
func (s *Service) RecoverAccount(ctx context.Context, recoveryToken, newPassword string) error {
	if recoveryToken == "" {
		return apierror.BadRequest("Recovery token is required")
	}

	var claims token.RecoveryClaims
	verification := s.codec.Verify(recoveryToken, s.cfg.GetRecoveryTokenSecret(), &claims)
	if !verification.Valid {
		if verification.Expired {
			return apierror.Forbidden("Token expired.")
		}
		return apierror.Forbidden("Token is invalid.")
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return apierror.BadRequest("User not found.")
	}
	if err != nil {
		return errors.Wrap(err, "auth.Service.RecoverAccount GetByID")
	}

	if user.RecoveryToken != recoveryToken {
		return apierror.Forbidden("Token is too old.")
	}

	passwordHash, err := users.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "auth.Service.RecoverAccount HashPassword")
	}

	if err := s.repos.Users.SetPassword(ctx, user.ID, passwordHash); err != nil {
		return errors.Wrap(err, "auth.Service.RecoverAccount SetPassword")
	}
	if err := s.repos.Users.SetRecoveryToken(ctx, user.ID, ""); err != nil {
		return errors.Wrap(err, "auth.Service.RecoverAccount SetRecoveryToken")
	}
	if err := s.repos.Users.ClearRefreshTokens(ctx, user.ID); err != nil {
		return errors.Wrap(err, "auth.Service.RecoverAccount ClearRefreshTokens")
	}

	return nil
}
