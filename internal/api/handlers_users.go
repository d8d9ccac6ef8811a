package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"scriptqueue/internal/policy"
	"scriptqueue/internal/services"
)

func (s *Server) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.identity.PendingUsers(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(*user))
	}
	writeJSON(w, http.StatusOK, out)
}

type approveRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "approve", "malformed request body", err))
		return
	}
	role := policy.ParseRole(req.Role)

	if err := s.identity.Approve(r.Context(), id, role); err != nil {
		writeError(w, s.logger, err)
		return
	}
	user, err := s.identity.Lookup(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}
