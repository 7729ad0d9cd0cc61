package agent

import "context"

type sessionIDContext struct{}

// WithSessionID routes adk runs on the returned context to the given session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContext{}, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionIDContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
