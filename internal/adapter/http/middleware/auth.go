package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/auth"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
)

// Auth validates the bearer token and injects the caller into the context.
// Requests without a header continue as anonymous; protected routes reject them in RequireRoles.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(models.WithUser(ctx, models.AnonymousUser())))
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := h.auth.Authenticate(ctx, token)
		if err != nil || user == nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate user", "error", fmt.Sprint(err))
			msg := "invalid credentials"
			if errors.Is(err, auth.ErrExpToken) {
				msg = auth.ErrExpToken.Error()
			}
			errorResponse(w, http.StatusUnauthorized, msg)
			return
		}

		ctx = wrap.WithUserID(ctx, user.ID.String())
		next.ServeHTTP(w, r.WithContext(models.WithUser(ctx, user)))
	})
}

// RequireRoles allows only callers holding one of the given roles. Admins pass every check.
// Usage: mux.Handle("POST /requests", m.RequireRoles(h.Submit, types.RiderRole))
func (h *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.UserRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := auth.RoleCheck(models.UserFromContext(r.Context()), allowedRoles...)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, auth.ErrInvalidToken):
			errorResponse(w, http.StatusUnauthorized, "authorization required")
		default:
			errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
		}
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
