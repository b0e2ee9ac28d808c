package domain

import "context"

type sessionKeyCtx struct{}

// ContextWithSessionKey tags ctx with the session a turn belongs to,
// so adapters called from nodes can attribute their events.
func ContextWithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyCtx{}, key)
}

// SessionKeyFromContext returns the key set by ContextWithSessionKey, or "".
func SessionKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(sessionKeyCtx{}).(string)
	return key
}
