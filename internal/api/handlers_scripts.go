package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"scriptqueue/internal/policy"
	"scriptqueue/internal/services"
)

// handleListScripts returns the version history for an item. Admins see
// every version; the claiming worker sees only the latest.
func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := userFrom(r)

	item, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrUnavailable, "api", "scripts", "load queue item", err))
		return
	}
	if item == nil {
		writeError(w, s.logger, services.Wrap(services.ErrNotFound, "api", "scripts", "queue item not found", nil))
		return
	}
	if decision := evaluateFor(viewer, *item); !decision.CanViewScriptHistory {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "not permitted to view scripts for this item"})
		return
	}

	if viewer.Role != policy.RoleAdmin {
		latest, err := s.store.LatestScript(r.Context(), id)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		out := []scriptResponse{}
		if latest != nil {
			out = append(out, toScriptResponse(*latest))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	scripts, err := s.store.ListScripts(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]scriptResponse, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, toScriptResponse(*script))
	}
	writeJSON(w, http.StatusOK, out)
}

type appendScriptRequest struct {
	Content string `json:"content"`
}

// handleAppendScript records a corrected submission as a new version on top
// of the history. Versions are never edited in place.
func (s *Server) handleAppendScript(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := userFrom(r)

	var req appendScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "scripts", "malformed request body", err))
		return
	}

	script, err := s.store.AppendScript(r.Context(), id, req.Content, viewer.Username)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScriptResponse(*script))
}
