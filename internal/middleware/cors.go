// Package middleware provides HTTP middleware for the SkillsNavigator API.
package middleware

import "net/http"

// CORS returns middleware that admits the configured frontend origin.
// Cookie-based identity requires credentialed requests, so the wildcard
// only applies when no explicit origin matches and never carries
// Allow-Credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			credentials := false
			for _, o := range allowedOrigins {
				if o == origin {
					allowed = true
					credentials = true
					break
				}
				if o == "*" {
					allowed = true
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				if credentials {
					// Credentials only for explicit origins; a wildcard
					// echo with credentials would enable CSRF.
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
