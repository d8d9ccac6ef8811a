package api

import (
	"context"
	"net/http"
	"strings"

	"scriptqueue/internal/identity"
	"scriptqueue/internal/logging"
	"scriptqueue/internal/policy"
	"scriptqueue/internal/services"
)

type ctxKey string

const ctxUser ctxKey = "user"

// userFrom returns the authenticated account attached by authMiddleware.
func userFrom(r *http.Request) *identity.User {
	user, _ := r.Context().Value(ctxUser).(*identity.User)
	return user
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic",
					logging.String("path", r.URL.Path),
					logging.Any("panic", rec),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware verifies the bearer token and resolves the account with its
// current role. Role lookup happens on every request so an approval or
// revocation takes effect without re-issuing tokens.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, s.logger, services.Wrap(services.ErrAuth, "api", "auth", "missing bearer token", nil))
			return
		}

		claims, err := s.identity.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		user, err := s.identity.Lookup(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, s.logger, services.Wrap(services.ErrAuth, "api", "auth", "unknown account", err))
			return
		}

		ctx := context.WithValue(r.Context(), ctxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireApproved rejects accounts still awaiting role assignment.
func (s *Server) requireApproved(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if user == nil || !user.Role.Approved() {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "account pending approval"})
			return
		}
		next(w, r)
	}
}

// requireAdmin rejects everyone but admins.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if user == nil || user.Role != policy.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "admin access required"})
			return
		}
		next(w, r)
	}
}
