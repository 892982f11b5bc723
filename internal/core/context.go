package core

import "context"

type contextKey string

const ctxKeyTenant contextKey = "tenant_id"

// ContextWithTenant scopes all collaborator calls made with ctx to a tenant.
func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenant, tenantID)
}

// TenantFromContext extracts the tenant id from context.
func TenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTenant).(string); ok {
		return v
	}
	return ""
}

// RequireTenant is TenantFromContext that fails with ErrMissingTenant.
func RequireTenant(ctx context.Context) (string, error) {
	tenant := TenantFromContext(ctx)
	if tenant == "" {
		return "", ErrMissingTenant
	}
	return tenant, nil
}
