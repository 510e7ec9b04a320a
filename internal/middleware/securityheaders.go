package middleware

import (
	"net/http"
)

// SecurityHeaders sets security headers on all responses
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Enable browser XSS filter (legacy but still supported)
			w.Header().Set("X-XSS-Protection", "1; mode=block")

			// Control referrer information sharing
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Disable unused browser features
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// 'self' rather than 'none': the server also serves the embedded frontend
			w.Header().Set("Content-Security-Policy", "default-src 'self'")

			// HSTS only over HTTPS and when explicitly enabled, to avoid
			// breaking local development
			if enableHSTS && r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			next.ServeHTTP(w, r)
		})
	}
}
