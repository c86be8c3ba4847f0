package server

import (
	"net/http"

	"github.com/imshq/go-ims-server/auth"
	"github.com/imshq/go-ims-server/internal/apierror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterHandler starts a new registration.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegistrationInput
		if !decodeJSONBody(w, r, &req) {
			return
		}

		identity, err := s.auth.Register(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "Registration Process Started.", map[string]interface{}{"user": identity})
	}
}

// VerifyRegistrationHandler completes registration with the token from the
// verification link.
func (s *Server) VerifyRegistrationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.auth.VerifyRegistration(r.Context(), r.Header.Get(registerHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "User account validation complete.", map[string]interface{}{"user": user})
	}
}

type resendVerificationRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resendVerificationRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			writeError(w, apierror.BadRequest("invalid user id"))
			return
		}

		identity, err := s.auth.ResendVerification(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "User account verification email sent.", map[string]interface{}{"user": identity})
	}
}

type startRecoveryRequest struct {
	Email string `json:"email"`
}

func (s *Server) StartRecoveryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRecoveryRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		email, err := s.auth.StartRecovery(r.Context(), req.Email)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "Recovery email sent for verification.", map[string]interface{}{"email": email})
	}
}

type recoverAccountRequest struct {
	Password string `json:"password"`
}

func (s *Server) RecoverAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recoverAccountRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		if err := s.auth.RecoverAccount(r.Context(), r.Header.Get(recoveryHeader), req.Password); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "Account recovery verified successfully", nil)
	}
}

// MeHandler returns the identity derived from the access token; a minimal
// consumer of the deserialization middleware.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessControl, ok := AccessControlFromContext(r.Context())
		if !ok {
			writeError(w, apierror.Forbidden("User needs to be logged in to pass access control checks."))
			return
		}
		writeJSON(w, http.StatusOK, "OK", map[string]interface{}{"user": accessControl.User})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "OK", nil)
	}
}
