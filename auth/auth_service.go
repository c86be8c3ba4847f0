package auth

import (
	"context"
	"time"

	"github.com/imshq/go-ims-server/internal/apierror"
	"github.com/imshq/go-ims-server/internal/config"
	"github.com/imshq/go-ims-server/organisations"
	"github.com/imshq/go-ims-server/policies"
	"github.com/imshq/go-ims-server/token"
	"github.com/imshq/go-ims-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repos holds all repository dependencies for the auth Service.
type Repos struct {
	Users         users.Repo
	Organisations organisations.Repo
	Policies      policies.Repo
}

// Identity is the public slice of a user returned alongside a token pair.
type Identity struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// Signature is a freshly minted access/refresh token pair.
type Signature struct {
	User         Identity `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// Service orchestrates login, refresh rotation with reuse detection, logout,
// and the registration/recovery flows.
type Service struct {
	repos    Repos
	codec    *token.Codec
	cfg      config.TokenConfig
	notifier Notifier
	nowTime  func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes the auth Service with required dependencies.
func NewService(repos Repos, codec *token.Codec, cfg config.TokenConfig, notifier Notifier, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Organisations == nil {
		return nil, errors.New("[NewService] Organisations repo is required")
	}
	if repos.Policies == nil {
		return nil, errors.New("[NewService] Policies repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] codec is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewService] token config is required")
	}
	if notifier == nil {
		notifier = NewLogNotifier()
	}

	s := &Service{
		repos:    repos,
		codec:    codec,
		cfg:      cfg,
		notifier: notifier,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// ParseOrganisationID validates an optional organisation id from the outside
// world. Malformed ids fail with a validation error, distinct from the
// null-claims path taken when no policy exists for a well-formed id.
func ParseOrganisationID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apierror.BadRequest("invalid organisation id")
	}
	return &id, nil
}

// Authenticate verifies the credentials and mints a fresh token pair. If the
// caller already held a refresh cookie, that token is rotated out of the
// ledger instead of letting re-logins grow it without bound.
func (s *Service) Authenticate(ctx context.Context, presentedToken, email, password, userAgent string) (*Signature, error) {
	user, err := s.repos.Users.GetByEmail(ctx, users.NormaliseEmail(email))
	if errors.Is(err, users.ErrNotFound) {
		return nil, apierror.NotFound("User does not exist.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Authenticate GetByEmail")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apierror.BadRequest("Invalid Credentials.")
	}

	signature, err := s.signature(ctx, user, nil)
	if err != nil {
		return nil, err
	}

	if presentedToken != "" {
		if _, err := s.repos.Users.RemoveRefreshToken(ctx, user.ID, presentedToken); err != nil {
			return nil, errors.Wrap(err, "auth.Service.Authenticate RemoveRefreshToken")
		}
	}
	if err := s.repos.Users.AppendRefreshToken(ctx, user.ID, signature.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Authenticate AppendRefreshToken")
	}

	log.Info().
		Str("userId", user.ID.Hex()).
		Str("userAgent", userAgent).
		Msg("user authenticated")
	return signature, nil
}

// Refresh exchanges a live refresh token for a fresh pair, consuming the
// presented token. A validly signed token that no ledger contains is the
// theft/replay signal: the claimed owner's whole token family is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string, organisationID *primitive.ObjectID) (*Signature, error) {
	if refreshToken == "" {
		return nil, apierror.BadRequest("No refresh token found.")
	}

	owner, err := s.repos.Users.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, users.ErrNotFound) {
		return nil, s.revokeReusedTokenFamily(ctx, refreshToken)
	}
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Refresh GetByRefreshToken")
	}

	// Tentative rotation: the presented token is consumed no matter how the
	// rest of the exchange goes.
	removed, err := s.repos.Users.RemoveRefreshToken(ctx, owner.ID, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.Refresh RemoveRefreshToken")
	}
	if !removed {
		log.Warn().Str("userId", owner.ID.Hex()).Msg("refresh token consumed concurrently")
	}

	var claims token.RefreshClaims
	verification := s.codec.Verify(refreshToken, s.cfg.GetRefreshTokenSecret(), &claims)
	if !verification.Valid {
		return nil, apierror.BadRequest("Refresh token expired, login required.")
	}

	// Should be unreachable given the ledger lookup above; guards against id
	// confusion between the signed payload and the stored document.
	if claims.User.ID != owner.ID {
		return nil, apierror.BadRequest("User id does not match refresh token.")
	}

	signature, err := s.signature(ctx, owner, organisationID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.AppendRefreshToken(ctx, owner.ID, signature.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "auth.Service.Refresh AppendRefreshToken")
	}

	log.Info().Str("userId", owner.ID.Hex()).Msg("token pair rotated")
	return signature, nil
}

// revokeReusedTokenFamily handles a refresh token that no ledger contains.
// If the signature does not even verify it is garbage; if it does, someone is
// replaying an already rotated or revoked credential and the safe response is
// to burn the claimed owner's entire session family.
func (s *Service) revokeReusedTokenFamily(ctx context.Context, refreshToken string) error {
	var claims token.RefreshClaims
	verification := s.codec.Verify(refreshToken, s.cfg.GetRefreshTokenSecret(), &claims)
	if !verification.Valid {
		return apierror.BadRequest("Invalid refresh token")
	}

	log.Warn().
		Str("userId", claims.User.ID.Hex()).
		Msg("refresh token reuse detected, revoking token family")

	hackedUser, err := s.repos.Users.GetByID(ctx, claims.User.ID)
	if errors.Is(err, users.ErrNotFound) {
		// Claimed owner no longer exists; nothing left to revoke.
		return apierror.BadRequest("Reuse of refresh token.")
	}
	if err != nil {
		return errors.Wrap(err, "auth.Service.Refresh reuse GetByID")
	}
	if err := s.repos.Users.ClearRefreshTokens(ctx, hackedUser.ID); err != nil {
		return errors.Wrap(err, "auth.Service.Refresh reuse ClearRefreshTokens")
	}
	return apierror.BadRequest("Reuse of refresh token.")
}

// Invalidate removes the refresh token from its owner's ledger on logout so
// the token cannot be replayed later.
func (s *Service) Invalidate(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apierror.BadRequest("No refresh token found.")
	}

	owner, err := s.repos.Users.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, users.ErrNotFound) {
		return apierror.BadRequest("Token is too old.")
	}
	if err != nil {
		return errors.Wrap(err, "auth.Service.Invalidate GetByRefreshToken")
	}

	if _, err := s.repos.Users.RemoveRefreshToken(ctx, owner.ID, refreshToken); err != nil {
		return errors.Wrap(err, "auth.Service.Invalidate RemoveRefreshToken")
	}
	return nil
}

// signature resolves the user's access policy for the optional organisation
// context and mints the token pair. No side effects; callers persist the new
// refresh token into the ledger.
func (s *Service) signature(ctx context.Context, user *users.User, organisationID *primitive.ObjectID) (*Signature, error) {
	policy, err := s.repos.Policies.GetForUser(ctx, user.ID, organisationID)
	if err != nil && !errors.Is(err, policies.ErrNotFound) {
		return nil, errors.Wrap(err, "auth.Service.signature GetForUser")
	}

	// Without a policy all organisation claims stay nil: the user still gets
	// a valid token, usable only for organisation-agnostic endpoints.
	var organisationClaims *token.OrganisationClaims
	var refreshOrganisationID *primitive.ObjectID
	if policy != nil && policy.OrganisationID != nil {
		organisationName := ""
		organisation, err := s.repos.Organisations.GetByID(ctx, *policy.OrganisationID)
		if err != nil && !errors.Is(err, organisations.ErrNotFound) {
			return nil, errors.Wrap(err, "auth.Service.signature Organisations.GetByID")
		}
		if organisation != nil {
			organisationName = organisation.Name
		}
		organisationClaims = &token.OrganisationClaims{
			ID:   *policy.OrganisationID,
			Name: organisationName,
			Role: policy.Role,
		}
		refreshOrganisationID = policy.OrganisationID
	}

	accessClaims := &token.AccessClaims{
		User: token.UserClaims{
			ID:           user.ID,
			Name:         user.FirstName,
			Email:        user.Email,
			Organisation: organisationClaims,
		},
		RegisteredClaims: s.codec.StandardClaims(s.cfg.GetAccessTokenTTL()),
	}
	accessToken, err := s.codec.Sign(accessClaims, s.cfg.GetAccessTokenSecret())
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.signature sign access token")
	}

	refreshClaims := &token.RefreshClaims{
		User: token.RefreshUserClaims{
			ID:             user.ID,
			OrganisationID: refreshOrganisationID,
		},
		RegisteredClaims: s.codec.StandardClaims(s.cfg.GetRefreshTokenTTL()),
	}
	refreshToken, err := s.codec.Sign(refreshClaims, s.cfg.GetRefreshTokenSecret())
	if err != nil {
		return nil, errors.Wrap(err, "auth.Service.signature sign refresh token")
	}

	return &Signature{
		User: Identity{
			ID:    user.ID,
			Name:  user.FullName,
			Email: user.Email,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
