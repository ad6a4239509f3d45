package membership

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SessionAuther implements Authenticator over the session store. Credential
// failures are normalized to the same generic error so callers cannot tell
// an unknown identifier from a wrong password.
type SessionAuther struct {
	members          Members
	sessions         Sessions
	csrfTokens       CSRFTokens
	passwords        PasswordAuthenticator
	duration         time.Duration
	extendedDuration time.Duration
	logger           Logger
	now              func() time.Time
}

var _ Authenticator = (*SessionAuther)(nil)

// NewSessionAuthenticator returns a new Authenticator
func NewSessionAuthenticator(repo RepositoryManager, cfg Config) *SessionAuther {
	duration := 24 * time.Hour
	if cfg.GetSessionDuration() > 0 {
		duration = time.Duration(cfg.GetSessionDuration()) * time.Hour
	}

	extendedDuration := duration
	if cfg.GetExtendedSessionDuration() > 0 {
		extendedDuration = time.Duration(cfg.GetExtendedSessionDuration()) * time.Hour
	}

	return &SessionAuther{
		members:          repo.Members(),
		sessions:         repo.Sessions(),
		csrfTokens:       repo.CSRFTokens(),
		passwords:        NewPasswordAuthenticator(),
		duration:         duration,
		extendedDuration: extendedDuration,
		logger:           defLogger{},
		now:              time.Now,
	}
}

func (s *SessionAuther) WithLogger(logger Logger) *SessionAuther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *SessionAuther) WithPasswordAuthenticator(passwords PasswordAuthenticator) *SessionAuther {
	if passwords != nil {
		s.passwords = passwords
	}
	return s
}

func (s *SessionAuther) WithClock(clock func() time.Time) *SessionAuther {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login verifies the credentials, gates on member status, and mints a new
// session. The returned raw token is the only copy; the store keeps its
// hash. No session row is created on any failure path.
func (s *SessionAuther) Login(ctx context.Context, identifier, password string, extended bool) (string, *Session, error) {
	member, err := s.members.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.logger.Info("login attempt for unknown identifier")
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("login member lookup error: %v", err)
		return "", nil, err
	}

	if err := s.passwords.ComparePasswordAndHash(password, member.PasswordHash); err != nil {
		s.logger.Info("login password mismatch for member %s", member.ID)
		return "", nil, ErrInvalidCredentials
	}

	member.EnsureStatus()
	if err := StatusAuthError(member.Status); err != nil {
		s.logger.Warn("login blocked due to member status %q", member.Status)
		return "", nil, err
	}

	raw, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	duration := s.duration
	if extended {
		duration = s.extendedDuration
	}

	session, err := s.sessions.Create(ctx, member.ID, raw, s.now().Add(duration))
	if err != nil {
		s.logger.Error("login session create error: %v", err)
		return "", nil, err
	}

	return raw, session, nil
}

// Logout invalidates the session and its CSRF token. Logging out with no
// live session is success, not an error.
func (s *SessionAuther) Logout(ctx context.Context, rawToken string) error {
	session, err := s.sessions.GetByToken(ctx, rawToken)
	if err != nil {
		if IsAuthError(err) {
			return nil
		}
		return err
	}

	if err := s.csrfTokens.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("logout csrf token delete error: %v", err)
	}

	return s.sessions.DeleteByToken(ctx, rawToken)
}

// MemberFromSession loads the member a session belongs to
func (s *SessionAuther) MemberFromSession(ctx context.Context, session *Session) (*Member, error) {
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.members.GetByID(ctx, session.MemberID)
}

// InvalidateMemberSessions removes every session the member holds, e.g.
// after a suspension.
func (s *SessionAuther) InvalidateMemberSessions(ctx context.Context, member *Member) error {
	if member == nil {
		return nil
	}
	return s.sessions.DeleteByMember(ctx, member.ID)
}
