package httpx

import "context"

type ctxKey string

// CtxKeyUserID holds the authenticated caller's user id. Set by the authn
// middleware, read by handlers and the per-user rate limiter.
const CtxKeyUserID ctxKey = "user_id"

func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}
