package server

import (
	"context"
	"net/http"

	"github.com/imshq/go-ims-server/internal/apierror"
	"github.com/imshq/go-ims-server/token"
)

type contextKey string

const accessControlKey contextKey = "accessControl"

// AccessControl carries the identity decoded from the access token for the
// lifetime of a request.
type AccessControl struct {
	User token.UserClaims
}

// AccessControlFromContext retrieves the identity injected by DeserializeUser.
func AccessControlFromContext(ctx context.Context) (AccessControl, bool) {
	ac, ok := ctx.Value(accessControlKey).(AccessControl)
	return ac, ok
}

// DeserializeUser validates the access token header and injects the decoded
// identity into the request context. It never touches the user store.
func (s *Server) DeserializeUser() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken := r.Header.Get(accessTokenHeader)
			if accessToken == "" {
				writeError(w, apierror.Forbidden("No access token found."))
				return
			}

			var claims token.AccessClaims
			verification := s.codec.Verify(accessToken, s.config.GetAccessTokenSecret(), &claims)
			if !verification.Valid {
				writeError(w, apierror.Unauthorized("Invalid access token."))
				return
			}

			ctx := context.WithValue(r.Context(), accessControlKey, AccessControl{User: claims.User})
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole restricts a route to identities holding one of the given roles
// in their active organisation.
func (s *Server) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessControl, ok := AccessControlFromContext(r.Context())
			if !ok || accessControl.User.Organisation == nil {
				writeError(w, apierror.Forbidden("User needs to be logged in to pass access control checks."))
				return
			}

			for _, role := range roles {
				if accessControl.User.Organisation.Role == role {
					next(w, r)
					return
				}
			}
			writeError(w, apierror.Forbidden("User role does not permit this action."))
		}
	}
}
