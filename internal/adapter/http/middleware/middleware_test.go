package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/auth"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/google/uuid"
)

type stubAuth map[string]*models.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "expired" {
		return nil, auth.ErrExpToken
	}
	u, ok := s[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return u, nil
}

func TestAuthAndRoles(t *testing.T) {
	rider := &models.User{ID: uuid.New(), Role: types.RiderRole}
	admin := &models.User{ID: uuid.New(), Role: types.AdminRole}
	m := NewMiddleware(stubAuth{"rider": rider, "admin": admin}, logger.Discard())

	var seen *models.User
	h := m.Auth(m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		seen = models.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, types.DriverRole, types.RiderRole))

	tests := []struct {
		name   string
		header string
		want   int
		user   *models.User
	}{
		{"no header", "", http.StatusUnauthorized, nil},
		{"malformed header", "Token rider", http.StatusUnauthorized, nil},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, nil},
		{"expired token", "Bearer expired", http.StatusUnauthorized, nil},
		{"rider allowed", "Bearer rider", http.StatusNoContent, rider},
		{"admin bypasses roles", "Bearer admin", http.StatusNoContent, admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if seen != tt.user {
				t.Fatalf("handler saw %+v, want %+v", seen, tt.user)
			}
		})
	}
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	m := NewMiddleware(stubAuth{}, logger.Discard())
	h := m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {}, types.DriverRole)

	req := httptest.NewRequest(http.MethodPost, "/rides", nil)
	req = req.WithContext(models.WithUser(req.Context(), &models.User{ID: uuid.New(), Role: types.RiderRole}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRecoverHidesPanic(t *testing.T) {
	m := NewMiddleware(stubAuth{}, logger.Discard())
	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("secret internals"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); body == "" || strings.Contains(body, "secret internals") {
		t.Fatalf("panic value leaked or empty body: %q", body)
	}
}
