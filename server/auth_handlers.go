package server

import (
	"net/http"

	"github.com/imshq/go-ims-server/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler verifies credentials, sets the refresh cookie and returns the
// access token in the body.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		presentedToken := refreshCookieValue(r)
		signature, err := s.auth.Authenticate(r.Context(), presentedToken, req.Email, req.Password, r.UserAgent())
		if err != nil {
			writeError(w, err)
			return
		}

		setRefreshCookie(w, signature.RefreshToken)
		writeJSON(w, http.StatusOK, "Login successful.", signature)
	}
}

type refreshResponse struct {
	TokenRefresh bool `json:"tokenRefresh"`
	*auth.Signature
}

// RefreshHandler rotates the presented refresh token for a new pair. On any
// failure the cookie is cleared: the presented credential is dead either way.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := refreshTokenFromRequest(r)

		organisationID, err := auth.ParseOrganisationID(r.Header.Get(orgIDHeader))
		if err != nil {
			clearRefreshCookie(w)
			writeError(w, err)
			return
		}

		signature, err := s.auth.Refresh(r.Context(), refreshToken, organisationID)
		if err != nil {
			clearRefreshCookie(w)
			writeError(w, err)
			return
		}

		setRefreshCookie(w, signature.RefreshToken)
		writeJSON(w, http.StatusOK, "New pair of tokens granted.", refreshResponse{
			TokenRefresh: true,
			Signature:    signature,
		})
	}
}

// LogoutHandler consumes the refresh token and clears the cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := refreshTokenFromRequest(r)

		if err := s.auth.Invalidate(r.Context(), refreshToken); err != nil {
			writeError(w, err)
			return
		}

		clearRefreshCookie(w)
		writeJSON(w, http.StatusOK, "Provided token pair invalidated.", nil)
	}
}

func refreshCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// refreshTokenFromRequest prefers the cookie and falls back to the explicit
// header for clients that cannot carry cross-site cookies.
func refreshTokenFromRequest(r *http.Request) string {
	if value := refreshCookieValue(r); value != "" {
		return value
	}
	return r.Header.Get(refreshTokenHeader)
}

func setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
