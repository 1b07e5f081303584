package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/internal/common"
)

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.New().String()
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), rid)))
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("http.request",
				"req_id", common.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// authenticate resolves "Authorization: Bearer <api token>" to a user and
// stores the user ID in the context. Session management proper is delegated;
// this is only the token-to-user edge.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := s.users.GetByAPIToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			respondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithUserID(r.Context(), user.ID)))
	})
}
