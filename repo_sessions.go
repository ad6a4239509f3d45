package membership

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type sessions struct {
	db     *bun.DB
	logger Logger
	now    func() time.Time
}

var _ Sessions = (*sessions)(nil)

type SessionsOption func(*sessions)

// WithSessionsLogger overrides the logger used for non-fatal store errors.
func WithSessionsLogger(logger Logger) SessionsOption {
	return func(s *sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionsClock injects a custom clock (useful for tests).
func WithSessionsClock(clock func() time.Time) SessionsOption {
	return func(s *sessions) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewSessionsRepository returns the bun-backed Sessions store
func NewSessionsRepository(db *bun.DB, opts ...SessionsOption) Sessions {
	s := &sessions{
		db:     db,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *sessions) Create(ctx context.Context, memberID uuid.UUID, rawToken string, expiresAt time.Time) (*Session, error) {
	record := &Session{
		ID:        uuid.New(),
		MemberID:  memberID,
		TokenHash: HashToken(rawToken),
		ExpiresAt: expiresAt,
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "session create failed")
	}

	return record, nil
}

// GetByToken hashes the presented token and matches it against live rows in
// a single query, so an expired session and an unknown token are
// indistinguishable. On a hit the session's last_used_at is refreshed.
func (s *sessions) GetByToken(ctx context.Context, rawToken string) (*Session, error) {
	record := &Session{}
	now := s.now()

	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.token_hash = ?", HashToken(rawToken)).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "session lookup failed")
	}

	if _, err := s.db.NewUpdate().
		Model((*Session)(nil)).
		Set("last_used_at = ?", now).
		Where("id = ?", record.ID.String()).
		Exec(ctx); err != nil {
		s.logger.Warn("session last_used_at refresh failed: %v", err)
	} else {
		record.LastUsedAt = &now
	}

	return record, nil
}

func (s *sessions) DeleteByToken(ctx context.Context, rawToken string) error {
	_, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("token_hash = ?", HashToken(rawToken)).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session delete failed")
	}
	return nil
}

func (s *sessions) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	_, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("member_id = ?", memberID.String()).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "member session delete failed")
	}
	return nil
}

// DeleteExpired bulk-deletes sessions past their expiry and returns the
// affected row count. Meant to run on a periodic trigger.
func (s *sessions) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("expires_at <= ?", s.now()).
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "expired session sweep failed")
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "expired session sweep count failed")
	}
	return count, nil
}
