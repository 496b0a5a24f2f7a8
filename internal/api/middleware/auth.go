package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mentora-ai/mentora/internal/api"
)

type contextKey string

const ExpertIDKey contextKey = "expert_id"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			expertID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			r.Header.Set("X-Expert-ID", expertID)
			ctx := context.WithValue(r.Context(), ExpertIDKey, expertID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetExpertID(ctx context.Context) string {
	expertID, _ := ctx.Value(ExpertIDKey).(string)
	return expertID
}
