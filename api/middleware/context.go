package middleware

import "context"

type contextKey string

const (
	ctxAdminID contextKey = "admin_id"
	ctxRole    contextKey = "admin_role"
)

// WithAdminID seeds the context with the authenticated admin id.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, ctxAdminID, adminID)
}

// AdminIDFromContext returns the authenticated admin id, or "" when the
// request is unauthenticated.
func AdminIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ctxAdminID).(string); ok {
		return value
	}
	return ""
}

// RoleFromContext returns the authenticated admin role, or "".
func RoleFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ctxRole).(string); ok {
		return value
	}
	return ""
}
