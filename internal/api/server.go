package api

import (
	"log/slog"

	"github.com/gorilla/mux"

	"scriptqueue/internal/dashboard"
	"scriptqueue/internal/identity"
	"scriptqueue/internal/logging"
	"scriptqueue/internal/notifications"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/watch"
)

// Server bundles the handlers for the dashboard API.
type Server struct {
	store    *queue.Store
	identity *identity.Service
	snapshot *dashboard.Store
	broker   *watch.Broker
	notifier notifications.Service
	logger   *slog.Logger
}

func NewServer(store *queue.Store, ident *identity.Service, snapshot *dashboard.Store, broker *watch.Broker, notifier notifications.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		store:    store,
		identity: ident,
		snapshot: snapshot,
		broker:   broker,
		notifier: notifier,
		logger:   logger,
	}
}

// Router assembles the route table with the middleware chain applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)
	r.Use(s.recoveryMiddleware)

	// Open endpoints.
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/auth/signup", s.handleSignUp).Methods("POST")
	r.HandleFunc("/v1/auth/signin", s.handleSignIn).Methods("POST")

	// Protected endpoints.
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.authMiddleware)

	v1.HandleFunc("/auth/signout", s.handleSignOut).Methods("POST")
	v1.HandleFunc("/auth/me", s.handleMe).Methods("GET")

	v1.HandleFunc("/queue", s.requireApproved(s.handleListItems)).Methods("GET")
	v1.HandleFunc("/queue", s.requireAdmin(s.handleCreateItem)).Methods("POST")
	v1.HandleFunc("/queue/{id}", s.requireApproved(s.handleGetItem)).Methods("GET")
	v1.HandleFunc("/queue/{id}", s.requireAdmin(s.handleUpdateItem)).Methods("PUT")
	v1.HandleFunc("/queue/{id}", s.requireAdmin(s.handleDeleteItem)).Methods("DELETE")
	v1.HandleFunc("/queue/{id}/claim", s.requireApproved(s.handleClaimItem)).Methods("POST")
	v1.HandleFunc("/queue/{id}/complete", s.requireApproved(s.handleCompleteItem)).Methods("POST")
	v1.HandleFunc("/queue/{id}/scripts", s.requireApproved(s.handleListScripts)).Methods("GET")
	v1.HandleFunc("/queue/{id}/scripts", s.requireAdmin(s.handleAppendScript)).Methods("POST")

	v1.HandleFunc("/stats", s.requireApproved(s.handleStats)).Methods("GET")

	v1.HandleFunc("/users/pending", s.requireAdmin(s.handlePendingUsers)).Methods("GET")
	v1.HandleFunc("/users/{id}/approve", s.requireAdmin(s.handleApproveUser)).Methods("POST")

	v1.HandleFunc("/events", s.requireApproved(s.handleEvents)).Methods("GET")

	return r
}
