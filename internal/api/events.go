package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scriptqueue/internal/logging"
	"scriptqueue/internal/watch"
)

const sseKeepAlive = 30 * time.Second

type eventBody struct {
	Op     string `json:"op"`
	ItemID string `json:"itemId"`
}

// handleEvents streams queue change notifications over SSE. Clients treat
// each event as an invalidation signal and re-fetch the collection; dropped
// connections are resubscribed best-effort on their side.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.broker.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case evt, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, evt); err != nil {
				s.logger.Debug("sse write failed", logging.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, evt watch.Event) error {
	data, err := json.Marshal(eventBody{Op: string(evt.Op), ItemID: evt.ItemID})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
	return err
}
