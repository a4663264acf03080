package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware adds bearer token authentication around accessing the routes.
// On success the verified session is placed in the request context for
// handlers to read back with SessionFromContext.
func Middleware(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		token, ok := bearerToken(r)
		if !ok {
			zap.S().Errorw("missing bearer token",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		session, err := VerifyToken(token, secret)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		zap.S().Debugf("user %s authenticated", session.Username)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), session)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
