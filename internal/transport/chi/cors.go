package chi

import "net/http"

// CORSMiddleware returns a middleware that sets CORS headers on every
// response, error responses included, and answers preflight OPTIONS.
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Tenant-Id")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
