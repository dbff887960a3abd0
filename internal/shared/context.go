package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the authenticated session to the request
// context. The session middleware is the only writer.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session placed by the middleware, or
// nil for anonymous requests.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
