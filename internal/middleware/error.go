package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler creates error handling middleware that recovers panics and
// turns them into a JSON 500.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: "An unexpected error occurred"}); encErr != nil {
						logger.Error("failed_to_encode_error_response",
							zap.Error(encErr),
							zap.String("path", r.URL.Path),
						)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
