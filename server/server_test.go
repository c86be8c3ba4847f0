package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imshq/go-ims-server/auth"
	"github.com/imshq/go-ims-server/internal/config"
	"github.com/imshq/go-ims-server/organisations/repofake"
	policyfake "github.com/imshq/go-ims-server/policies/repofake"
	"github.com/imshq/go-ims-server/token"
	"github.com/imshq/go-ims-server/users"
	userfake "github.com/imshq/go-ims-server/users/repofake"
)

type testTokens struct{}

func (testTokens) GetAccessTokenSecret() string       { return "access-secret" }
func (testTokens) GetRefreshTokenSecret() string      { return "refresh-secret" }
func (testTokens) GetRecoveryTokenSecret() string     { return "recovery-secret" }
func (testTokens) GetAccessTokenTTL() time.Duration   { return 15 * time.Minute }
func (testTokens) GetRefreshTokenTTL() time.Duration  { return 24 * time.Hour }
func (testTokens) GetRecoveryTokenTTL() time.Duration { return 10 * time.Minute }

type testConfig struct {
	config.EnvVars
	config.Cors
	testTokens
}

type serverFixture struct {
	userRepo *userfake.FakeUserRepo
	codec    *token.Codec
	server   *Server
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	f := &serverFixture{
		userRepo: userfake.NewFakeUserRepo(),
		codec:    token.NewCodec(),
	}

	service, err := auth.NewService(auth.Repos{
		Users:         f.userRepo,
		Organisations: repofake.NewFakeOrganisationRepo(),
		Policies:      policyfake.NewFakePolicyRepo(),
	}, f.codec, testConfig{}, nil)
	require.NoError(t, err)

	f.server = New(testConfig{}, service, f.codec)
	return f
}

func (f *serverFixture) createUser(t *testing.T, email, password string) *users.User {
	t.Helper()
	hash, err := users.HashPassword(password)
	require.NoError(t, err)
	user := users.New("Ada", "Lovelace", email, hash)
	require.NoError(t, f.userRepo.Upsert(context.Background(), user))
	return user
}

func (f *serverFixture) do(t *testing.T, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (string, map[string]interface{}) {
	t.Helper()
	var parsed struct {
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&parsed))
	return parsed.Message, parsed.Details
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == refreshCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", refreshCookieName)
	return nil
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	rec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	message, details := decodeResponse(t, rec)
	require.Equal(t, "Login successful.", message)
	require.NotEmpty(t, details["accessToken"])
	require.NotEmpty(t, details["refreshToken"])

	cookie := refreshCookie(t, rec)
	require.Equal(t, details["refreshToken"], cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	rec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, details := decodeResponse(t, rec)
	require.Equal(t, "Invalid Credentials.", details["description"])
}

func TestRefreshRotatesCookie(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	loginRec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, loginRec.Code)
	loginCookie := refreshCookie(t, loginRec)

	refreshRec := f.do(t, http.MethodPost, RouteRefreshToken, nil, func(r *http.Request) {
		r.AddCookie(loginCookie)
	})
	require.Equal(t, http.StatusOK, refreshRec.Code)

	message, details := decodeResponse(t, refreshRec)
	require.Equal(t, "New pair of tokens granted.", message)
	require.Equal(t, true, details["tokenRefresh"])

	rotated := refreshCookie(t, refreshRec)
	require.NotEqual(t, loginCookie.Value, rotated.Value)

	// Replaying the consumed cookie wipes the ledger.
	reuseRec := f.do(t, http.MethodPost, RouteRefreshToken, nil, func(r *http.Request) {
		r.AddCookie(loginCookie)
	})
	require.Equal(t, http.StatusBadRequest, reuseRec.Code)
	_, reuseDetails := decodeResponse(t, reuseRec)
	require.Equal(t, "Reuse of refresh token.", reuseDetails["description"])
	require.Less(t, refreshCookie(t, reuseRec).MaxAge, 0)
}

func TestRefreshWithoutToken(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, RouteRefreshToken, nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, details := decodeResponse(t, rec)
	require.Equal(t, "No refresh token found.", details["description"])
}

func TestRefreshMalformedOrganisationID(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	loginRec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "secret"}, nil)
	loginCookie := refreshCookie(t, loginRec)

	rec := f.do(t, http.MethodPost, RouteRefreshToken, nil, func(r *http.Request) {
		r.AddCookie(loginCookie)
		r.Header.Set(orgIDHeader, "not-an-object-id")
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, details := decodeResponse(t, rec)
	require.Equal(t, "invalid organisation id", details["description"])
}

func TestLogoutClearsCookie(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	loginRec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "secret"}, nil)
	loginCookie := refreshCookie(t, loginRec)

	logoutRec := f.do(t, http.MethodDelete, RouteLogout, nil, func(r *http.Request) {
		r.AddCookie(loginCookie)
	})
	require.Equal(t, http.StatusOK, logoutRec.Code)

	message, _ := decodeResponse(t, logoutRec)
	require.Equal(t, "Provided token pair invalidated.", message)
	require.Less(t, refreshCookie(t, logoutRec).MaxAge, 0)

	// The pair is gone: logging out again with the same cookie fails.
	repeatRec := f.do(t, http.MethodDelete, RouteLogout, nil, func(r *http.Request) {
		r.AddCookie(loginCookie)
	})
	require.Equal(t, http.StatusBadRequest, repeatRec.Code)
	_, details := decodeResponse(t, repeatRec)
	require.Equal(t, "Token is too old.", details["description"])
}

func TestDeserializeUserMissingToken(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodGet, RouteMe, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	_, details := decodeResponse(t, rec)
	require.Equal(t, "No access token found.", details["description"])
}

func TestDeserializeUserInvalidToken(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodGet, RouteMe, nil, func(r *http.Request) {
		r.Header.Set(accessTokenHeader, "not.a.jwt")
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	_, details := decodeResponse(t, rec)
	require.Equal(t, "Invalid access token.", details["description"])
}

func TestDeserializeUserInjectsIdentity(t *testing.T) {
	f := setupServerFixture(t)
	f.createUser(t, "ada@example.com", "secret")

	loginRec := f.do(t, http.MethodPost, RouteLogin, loginRequest{Email: "ada@example.com", Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, loginRec.Code)
	_, loginDetails := decodeResponse(t, loginRec)
	accessToken := loginDetails["accessToken"].(string)

	rec := f.do(t, http.MethodGet, RouteMe, nil, func(r *http.Request) {
		r.Header.Set(accessTokenHeader, accessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, details := decodeResponse(t, rec)
	userDetails, ok := details["user"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ada@example.com", userDetails["email"])
	require.Equal(t, "Ada", userDetails["name"])
	require.Nil(t, userDetails["organisation"])
}

func TestRequireRole(t *testing.T) {
	f := setupServerFixture(t)

	handler := ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, f.server.RequireRole("admin"))

	claims := token.UserClaims{Name: "Ada", Email: "ada@example.com"}

	// No organisation membership at all.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), accessControlKey, AccessControl{User: claims}))
	handler(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Member but with the wrong role.
	claims.Organisation = &token.OrganisationClaims{Name: "Acme", Role: "viewer"}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), accessControlKey, AccessControl{User: claims}))
	handler(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	claims.Organisation.Role = "admin"
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), accessControlKey, AccessControl{User: claims}))
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
