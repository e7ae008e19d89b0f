package handler

import (
	"net/http"
	"strings"

	"github.com/rsharma/prepdesk/internal/model"
)

// requireAuth verifies the bearer token and attaches the resolved user
// to the request context. A missing or invalid token is 401; a token
// whose user no longer exists is 403, same as an insufficient role.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		userID, err := h.auth.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := h.store.GetUserByID(userID)
		if err != nil {
			respondInternal(w, "failed to resolve user", err)
			return
		}
		if user == nil {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := model.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the authenticated user
// has one of the allowed roles. It composes after requireAuth.
func requireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := model.UserFromContext(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "authorization required")
				return
			}
			for _, role := range allowed {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "forbidden")
		})
	}
}
