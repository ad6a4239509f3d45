package membership

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// Locals keys under which the auth chain exposes its context values to
// router handlers.
const (
	CurrentUserKey = "current_user"
	SessionInfoKey = "session_info"
)

// SessionInfo is the session handle the auth chain attaches for downstream
// handlers and the CSRF gate.
type SessionInfo struct {
	SessionID uuid.UUID
}

var currentUserCtxKey = &contextKey{"current_user"}
var sessionInfoCtxKey = &contextKey{"session_info"}

type contextKey struct {
	name string
}

// WithCurrentUser sets the Member in the given context
func WithCurrentUser(ctx context.Context, member *Member) context.Context {
	return context.WithValue(ctx, currentUserCtxKey, member)
}

// CurrentUserFromContext finds the member from the context.
func CurrentUserFromContext(ctx context.Context) (*Member, bool) {
	raw, ok := ctx.Value(currentUserCtxKey).(*Member)
	return raw, ok
}

// WithSessionInfo sets the SessionInfo in the given context
func WithSessionInfo(ctx context.Context, info SessionInfo) context.Context {
	return context.WithValue(ctx, sessionInfoCtxKey, info)
}

// SessionInfoFromContext extracts the SessionInfo from the standard context
func SessionInfoFromContext(ctx context.Context) (SessionInfo, bool) {
	raw, ok := ctx.Value(sessionInfoCtxKey).(SessionInfo)
	return raw, ok
}

// CurrentUserFromRouter extracts the member from the router context
func CurrentUserFromRouter(c router.Context) (*Member, bool) {
	raw := c.Locals(CurrentUserKey)
	if raw == nil {
		return nil, false
	}
	member, ok := raw.(*Member)
	return member, ok
}

// SessionInfoFromRouter extracts the SessionInfo from the router context
func SessionInfoFromRouter(c router.Context) (SessionInfo, bool) {
	raw := c.Locals(SessionInfoKey)
	if raw == nil {
		return SessionInfo{}, false
	}
	info, ok := raw.(SessionInfo)
	return info, ok
}
