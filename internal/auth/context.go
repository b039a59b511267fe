// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithPrincipal/FromContext for propagating the caller via context

package auth

import (
	"context"
)

// principalContextKey is the key type for storing the principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the verified principal attached.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// FromContext retrieves the verified principal from the context,
// returning "" if not present.
func FromContext(ctx context.Context) string {
	val := ctx.Value(principalContextKey{})
	if val == nil {
		return ""
	}
	principal, ok := val.(string)
	if !ok {
		return ""
	}
	return principal
}
