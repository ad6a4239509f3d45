package membership

import (
	"context"
	"crypto/subtle"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type csrfTokens struct {
	db *bun.DB
}

var _ CSRFTokens = (*csrfTokens)(nil)

// NewCSRFTokensRepository returns the bun-backed CSRFTokens service
func NewCSRFTokensRepository(db *bun.DB) CSRFTokens {
	return &csrfTokens{db: db}
}

// Generate mints a new token for the session and replaces any existing one:
// at most one live token per session. Concurrently open forms for the same
// session therefore invalidate each other's token; that single-active-form
// model is pending product confirmation, do not change it here.
func (c *csrfTokens) Generate(ctx context.Context, sessionID uuid.UUID) (string, error) {
	raw, err := GenerateToken()
	if err != nil {
		return "", err
	}

	record := &CSRFToken{
		SessionID: sessionID,
		TokenHash: HashToken(raw),
	}

	_, err = c.db.NewInsert().
		Model(record).
		On("CONFLICT (session_id) DO UPDATE").
		Set("token_hash = EXCLUDED.token_hash").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)

	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "csrf token upsert failed")
	}

	return raw, nil
}

// Validate reports whether the presented token matches the live token for
// the session. There is no expiry of its own; validity is bounded by the
// session's lifetime.
func (c *csrfTokens) Validate(ctx context.Context, sessionID uuid.UUID, rawToken string) (bool, error) {
	record := &CSRFToken{}

	err := c.db.NewSelect().
		Model(record).
		Where("?TableAlias.session_id = ?", sessionID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "csrf token lookup failed")
	}

	presented := HashToken(rawToken)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(record.TokenHash)) == 1, nil
}

func (c *csrfTokens) Delete(ctx context.Context, sessionID uuid.UUID) error {
	_, err := c.db.NewDelete().
		Model((*CSRFToken)(nil)).
		Where("session_id = ?", sessionID.String()).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "csrf token delete failed")
	}
	return nil
}

// DeleteOrphaned removes tokens whose session no longer exists. Maintenance
// only; request handling stays correct without it.
func (c *csrfTokens) DeleteOrphaned(ctx context.Context) (int64, error) {
	res, err := c.db.NewDelete().
		Model((*CSRFToken)(nil)).
		Where("session_id NOT IN (SELECT id FROM sessions)").
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "orphaned csrf token sweep failed")
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "orphaned csrf token sweep count failed")
	}
	return count, nil
}
