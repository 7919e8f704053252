package middlewares

import (
	"net/http"

	"github.com/unrolled/render"
)

// RequireRole gates a subrouter to the given roles. Must run after
// AuthMiddleware.
func RequireRole(rnd *render.Render, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil || !allowed[user.Role] {
				_ = rnd.JSON(w, http.StatusUnauthorized, map[string]string{"message": "ไม่มีสิทธิ์เข้าถึง"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
