package domain

import "context"

// TenantHeader is the request header every route requires.
const TenantHeader = "X-Tenant-Id"

type tenantKey struct{}

// WithTenant stores the tenant identifier in the context.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFromContext extracts the tenant identifier, "" if absent.
func TenantFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tenantKey{}).(string); ok {
		return t
	}
	return ""
}
