package auth

import "context"

type userContextKey struct{}
type tokenContextKey struct{}

// ContextWithUser attaches the resolved request identity to the context.
func ContextWithUser(ctx context.Context, uc UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, &uc)
}

// UserFromContext extracts the resolved identity, if the authn middleware
// placed one.
func UserFromContext(ctx context.Context) (UserContext, bool) {
	if ctx == nil {
		return UserContext{}, false
	}
	v, ok := ctx.Value(userContextKey{}).(*UserContext)
	if !ok || v == nil {
		return UserContext{}, false
	}
	return *v, true
}

// ContextWithToken stores the raw bearer token inside the context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token if it was previously attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
