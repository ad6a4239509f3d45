package authware_test

import (
	"context"
	"database/sql"
	"time"

	membership "github.com/goliatone/go-membership"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) GetByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) GetByEmail(ctx context.Context, email string) (*membership.Member, error) {
	args := m.Called(ctx, email)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) GetByUsername(ctx context.Context, username string) (*membership.Member, error) {
	args := m.Called(ctx, username)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) GetByIdentifier(ctx context.Context, identifier string) (*membership.Member, error) {
	args := m.Called(ctx, identifier)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) Create(ctx context.Context, record *membership.Member) (*membership.Member, error) {
	args := m.Called(ctx, record)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) Update(ctx context.Context, record *membership.Member) (*membership.Member, error) {
	args := m.Called(ctx, record)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) UpdateStatus(ctx context.Context, id uuid.UUID, status membership.MemberStatus, opts ...membership.StatusUpdateOption) (*membership.Member, error) {
	args := m.Called(ctx, id, status)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMembers) ListActive(ctx context.Context) ([]*membership.Member, error) {
	args := m.Called(ctx)
	if rec := args.Get(0); rec != nil {
		return rec.([]*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembers) HasAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Create(ctx context.Context, memberID uuid.UUID, rawToken string, expiresAt time.Time) (*membership.Session, error) {
	args := m.Called(ctx, memberID, rawToken, expiresAt)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) GetByToken(ctx context.Context, rawToken string) (*membership.Session, error) {
	args := m.Called(ctx, rawToken)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) DeleteByToken(ctx context.Context, rawToken string) error {
	return m.Called(ctx, rawToken).Error(0)
}

func (m *mockSessions) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	return m.Called(ctx, memberID).Error(0)
}

func (m *mockSessions) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockCSRFTokens struct {
	mock.Mock
}

func (m *mockCSRFTokens) Generate(ctx context.Context, sessionID uuid.UUID) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *mockCSRFTokens) Validate(ctx context.Context, sessionID uuid.UUID, rawToken string) (bool, error) {
	args := m.Called(ctx, sessionID, rawToken)
	return args.Bool(0), args.Error(1)
}

func (m *mockCSRFTokens) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockCSRFTokens) DeleteOrphaned(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockRepo struct {
	members    *mockMembers
	sessions   *mockSessions
	csrfTokens *mockCSRFTokens
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		members:    &mockMembers{},
		sessions:   &mockSessions{},
		csrfTokens: &mockCSRFTokens{},
	}
}

func (m *mockRepo) Validate() error { return nil }
func (m *mockRepo) MustValidate()   {}

func (m *mockRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *mockRepo) Members() membership.Members       { return m.members }
func (m *mockRepo) Sessions() membership.Sessions     { return m.sessions }
func (m *mockRepo) CSRFTokens() membership.CSRFTokens { return m.csrfTokens }
