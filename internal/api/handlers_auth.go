package api

import (
	"encoding/json"
	"net/http"

	"scriptqueue/internal/services"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "signup", "malformed request body", err))
		return
	}

	user, err := s.identity.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(*user)})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "signin", "malformed request body", err))
		return
	}

	token, user, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(*user)})
}

// Sign-out is client-side token disposal; the endpoint exists so clients have
// a uniform lifecycle to call.
func (s *Server) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if user == nil {
		writeError(w, s.logger, services.Wrap(services.ErrAuth, "api", "me", "not authenticated", nil))
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}
