package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"scriptqueue/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "queue", "claim", "update failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"queue", "claim", "update failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToUnavailable(t *testing.T) {
	err := services.Wrap(nil, "queue", "list", "", errors.New("io"))
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable marker for nil marker, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", services.Wrap(services.ErrValidation, "queue", "add", "title required", nil), http.StatusBadRequest},
		{"auth", services.ErrAuth, http.StatusUnauthorized},
		{"not found", services.Wrap(services.ErrNotFound, "queue", "remove", "no such item", nil), http.StatusNotFound},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"invalid state", services.ErrInvalidState, http.StatusUnprocessableEntity},
		{"unavailable", services.ErrUnavailable, http.StatusServiceUnavailable},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, got)
		}
	}
}
