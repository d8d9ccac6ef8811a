package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scriptqueue/internal/logging"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/services"
)

type itemRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       *float64   `json:"price"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := queue.ParseStatus(raw)
		if err != nil {
			writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "list", "unknown status filter", err))
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrUnavailable, "api", "list", "list queue items", err))
		return
	}

	viewer := userFrom(r)
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(*item, viewer))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrUnavailable, "api", "get", "load queue item", err))
		return
	}
	if item == nil {
		writeError(w, s.logger, services.Wrap(services.ErrNotFound, "api", "get", "queue item not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item, userFrom(r)))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "create", "malformed request body", err))
		return
	}
	if req.Price == nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "create", "price is required", nil))
		return
	}

	item, err := s.store.Add(r.Context(), req.Title, req.Description, *req.Price, req.Deadline)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(*item, userFrom(r)))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "update", "malformed request body", err))
		return
	}
	if req.Price == nil {
		writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "update", "price is required", nil))
		return
	}

	item, err := s.store.Update(r.Context(), id, req.Title, req.Description, *req.Price, req.Deadline)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item, userFrom(r)))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Remove(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := userFrom(r)

	item, err := s.store.Claim(r.Context(), id, viewer.Username)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item, viewer))
}

type completeRequest struct {
	ScriptContent string `json:"scriptContent"`
}

func (s *Server) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewer := userFrom(r)

	var req completeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, s.logger, services.Wrap(services.ErrValidation, "api", "complete", "malformed request body", err))
			return
		}
	}

	// Only the claimer or an admin may complete; the store enforces the
	// status transition itself.
	current, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, services.Wrap(services.ErrUnavailable, "api", "complete", "load queue item", err))
		return
	}
	if current == nil {
		writeError(w, s.logger, services.Wrap(services.ErrNotFound, "api", "complete", "queue item not found", nil))
		return
	}
	if decision := evaluateFor(viewer, *current); !decision.CanComplete {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "not permitted to complete this item"})
		return
	}

	item, err := s.store.Complete(r.Context(), id, req.ScriptContent, viewer.Username)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyCompleted(r.Context(), *item, viewer.Username); err != nil {
			s.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item, viewer))
}
