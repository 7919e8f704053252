package middlewares

import (
	"context"
	"net/http"

	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/utils/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "current_user"

// CurrentUser returns the authenticated user placed on the context by
// AuthMiddleware, or nil on unauthenticated routes.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// AuthMiddleware resolves the session cookie into a user and rejects
// requests without a valid session.
func AuthMiddleware(rnd *render.Render, sessionStore sessions.SessionStore, userRepo repositories.UserRepositoryImpl) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessionStore.GetUserID(r)
			if err != nil || userID == "" {
				_ = rnd.JSON(w, http.StatusUnauthorized, map[string]string{"message": "กรุณาเข้าสู่ระบบ"})
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				zap.L().Error("failed to resolve session user", zap.Error(err))
				_ = rnd.JSON(w, http.StatusInternalServerError, map[string]string{"message": "เกิดข้อผิดพลาดภายในระบบ กรุณาลองใหม่อีกครั้ง"})
				return
			}
			if user == nil {
				_ = rnd.JSON(w, http.StatusUnauthorized, map[string]string{"message": "กรุณาเข้าสู่ระบบ"})
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
