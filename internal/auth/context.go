package auth

import (
	"context"
	"strings"
)

type ctxKey string

const principalIDKey ctxKey = "auth_principal_id"

// ContextWithPrincipal stores the authenticated principal id in the context.
func ContextWithPrincipal(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalIDKey, strings.TrimSpace(principalID))
}

// PrincipalIDFromContext extracts the authenticated principal id.
func PrincipalIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(principalIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
