package server

import (
	"context"
	"net/http"
	"strings"

	"dhammasound/model"
)

// contextKey keeps request-scoped values off the string keyspace.
type contextKey int

const userContextKey contextKey = iota

// AuthMiddleware verifies the bearer token, loads the account with its
// role and attaches it to the request context. Missing accounts and
// deactivated accounts are both rejected.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if authHeader == "" || len(parts) != 2 || parts[0] != "Bearer" {
			h.writeError(w, BadRequest("Invalid token"))
			return
		}

		userID, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			h.writeError(w, Unauthorized("Invalid token"))
			return
		}

		user, err := h.userRepo.GetByIDWithRole(r.Context(), userID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if user == nil || !user.IsActive {
			h.writeError(w, Unauthorized("Account not found"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RoleMiddleware authorizes the already-authenticated user against an
// allow-list of role names. It must run after AuthMiddleware.
func (h *APIHandler) RoleMiddleware(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				h.writeError(w, Unauthorized("Account not found"))
				return
			}
			roleName := ""
			if user.Role != nil {
				roleName = user.Role.Name
			}
			for _, role := range roles {
				if role == roleName {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.writeError(w, Forbidden("Access denied admin only"))
		}
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, Unauthorized("Account not found")
	}
	return user, nil
}
