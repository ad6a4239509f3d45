package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Members is the narrow repository surface the lifecycle and auth code
// depend on. Status writes outside UpdateStatus are not sanctioned.
type Members interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	GetByIdentifier(ctx context.Context, identifier string) (*Member, error)
	Create(ctx context.Context, record *Member) (*Member, error)
	Update(ctx context.Context, record *Member) (*Member, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status MemberStatus, opts ...StatusUpdateOption) (*Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]*Member, error)
	HasAdmin(ctx context.Context) (bool, error)
}

// Sessions persists opaque session records keyed by a hash of the bearer
// token. The raw token only ever exists in the client cookie and in transit.
type Sessions interface {
	Create(ctx context.Context, memberID uuid.UUID, rawToken string, expiresAt time.Time) (*Session, error)
	GetByToken(ctx context.Context, rawToken string) (*Session, error)
	DeleteByToken(ctx context.Context, rawToken string) error
	DeleteByMember(ctx context.Context, memberID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// CSRFTokens issues and validates tokens bound 1:1 to a session id.
type CSRFTokens interface {
	Generate(ctx context.Context, sessionID uuid.UUID) (string, error)
	Validate(ctx context.Context, sessionID uuid.UUID, rawToken string) (bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteOrphaned(ctx context.Context) (int64, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string, extended bool) (string, *Session, error)
	Logout(ctx context.Context, rawToken string) error
	MemberFromSession(ctx context.Context, session *Session) (*Member, error)
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

// Config holds membership auth options
type Config interface {
	GetSessionDuration() int
	GetExtendedSessionDuration() int
	GetCookieName() string
	GetSecureCookie() bool
	GetCSRFHeaderName() string
	GetLoginRoute() string
	GetSetupRoute() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MEMBERSHIP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
