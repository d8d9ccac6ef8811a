package api

import (
	"fmt"
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok","service":"scriptqueue"}`)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	summary := s.snapshot.Summary()
	board := s.snapshot.Leaderboard()
	writeJSON(w, http.StatusOK, toStatsResponse(summary, board))
}
