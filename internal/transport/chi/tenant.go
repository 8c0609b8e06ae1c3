package chi

import (
	"net/http"
	"strings"

	"github.com/shelfstream/prodex/internal/domain"
)

// exemptPaths are routes that bypass the tenant check (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantMiddleware returns a middleware that requires a non-blank tenant
// header on every route and stores the tenant in the request context.
func TenantMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			tenant := strings.TrimSpace(r.Header.Get(domain.TenantHeader))
			if tenant == "" {
				writeError(w, http.StatusBadRequest, "Missing or invalid X-Tenant-Id header", nil)
				return
			}

			ctx := domain.WithTenant(r.Context(), tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
