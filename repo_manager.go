package membership

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Members() Members
	Sessions() Sessions
	CSRFTokens() CSRFTokens
}

type mngr struct {
	db         *bun.DB
	members    Members
	sessions   Sessions
	csrfTokens CSRFTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		members:    NewMembersRepository(db),
		sessions:   NewSessionsRepository(db),
		csrfTokens: NewCSRFTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.members == nil {
		return errors.New("repository members should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	if m.csrfTokens == nil {
		return errors.New("repository csrfTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Members() Members {
	return m.members
}

func (m mngr) Sessions() Sessions {
	return m.sessions
}

func (m mngr) CSRFTokens() CSRFTokens {
	return m.csrfTokens
}
