package session

import "context"

// unexported, collision-proof context keys
type (
	idContextKey      struct{}
	sessionContextKey struct{}
)

// WithID attaches the session id to ctx so token lookups further down the
// call chain (the backend client) know whose tokens to read.
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, idContextKey{}, sessionID)
}

func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idContextKey{}).(string)
	return id, ok && id != ""
}

// WithSession attaches the resolved session and its id to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	ctx = WithID(ctx, s.SessionID)
	return context.WithValue(ctx, sessionContextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
