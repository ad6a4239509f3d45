package membership_test

import (
	"context"
	"sync"
	"time"

	membership "github.com/goliatone/go-membership"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMembers implements membership.Members
type MockMembers struct {
	mock.Mock
}

func (m *MockMembers) GetByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) GetByEmail(ctx context.Context, email string) (*membership.Member, error) {
	args := m.Called(ctx, email)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) GetByUsername(ctx context.Context, username string) (*membership.Member, error) {
	args := m.Called(ctx, username)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) GetByIdentifier(ctx context.Context, identifier string) (*membership.Member, error) {
	args := m.Called(ctx, identifier)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) Create(ctx context.Context, record *membership.Member) (*membership.Member, error) {
	args := m.Called(ctx, record)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) Update(ctx context.Context, record *membership.Member) (*membership.Member, error) {
	args := m.Called(ctx, record)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) UpdateStatus(ctx context.Context, id uuid.UUID, status membership.MemberStatus, opts ...membership.StatusUpdateOption) (*membership.Member, error) {
	args := m.Called(ctx, id, status, opts)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMembers) ListActive(ctx context.Context) ([]*membership.Member, error) {
	args := m.Called(ctx)
	if rec := args.Get(0); rec != nil {
		return rec.([]*membership.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembers) HasAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockSessions implements membership.Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Create(ctx context.Context, memberID uuid.UUID, rawToken string, expiresAt time.Time) (*membership.Session, error) {
	args := m.Called(ctx, memberID, rawToken, expiresAt)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessions) GetByToken(ctx context.Context, rawToken string) (*membership.Session, error) {
	args := m.Called(ctx, rawToken)
	if rec := args.Get(0); rec != nil {
		return rec.(*membership.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessions) DeleteByToken(ctx context.Context, rawToken string) error {
	return m.Called(ctx, rawToken).Error(0)
}

func (m *MockSessions) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	return m.Called(ctx, memberID).Error(0)
}

func (m *MockSessions) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCSRFTokens implements membership.CSRFTokens
type MockCSRFTokens struct {
	mock.Mock
}

func (m *MockCSRFTokens) Generate(ctx context.Context, sessionID uuid.UUID) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCSRFTokens) Validate(ctx context.Context, sessionID uuid.UUID, rawToken string) (bool, error) {
	args := m.Called(ctx, sessionID, rawToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockCSRFTokens) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockCSRFTokens) DeleteOrphaned(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockConfig implements membership.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSessionDuration() int {
	return m.Called().Int(0)
}

func (m *MockConfig) GetExtendedSessionDuration() int {
	return m.Called().Int(0)
}

func (m *MockConfig) GetCookieName() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetSecureCookie() bool {
	return m.Called().Bool(0)
}

func (m *MockConfig) GetCSRFHeaderName() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetLoginRoute() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetSetupRoute() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetRejectedRouteKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetRejectedRouteDefault() string {
	return m.Called().String(0)
}

func newMockConfig() *MockConfig {
	cfg := new(MockConfig)
	cfg.On("GetSessionDuration").Return(24)
	cfg.On("GetExtendedSessionDuration").Return(24 * 30)
	cfg.On("GetCookieName").Return("membership_session")
	cfg.On("GetSecureCookie").Return(true)
	cfg.On("GetCSRFHeaderName").Return("X-CSRF-Token")
	cfg.On("GetLoginRoute").Return("/login")
	cfg.On("GetSetupRoute").Return("/setup")
	cfg.On("GetRejectedRouteKey").Return("rejected_route")
	cfg.On("GetRejectedRouteDefault").Return("/")
	return cfg
}

// capturingSink collects lifecycle events
type capturingSink struct {
	mu     sync.Mutex
	events []membership.LifecycleEvent
}

func (c *capturingSink) HandleEvent(ctx context.Context, event membership.LifecycleEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingSink) Events() []membership.LifecycleEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]membership.LifecycleEvent, len(c.events))
	copy(out, c.events)
	return out
}

// stubIntegration is a scriptable integration adapter
type stubIntegration struct {
	name        string
	enabled     bool
	handleErr   error
	healthErr   error
	mu          sync.Mutex
	received    []membership.LifecycleEvent
	healthCalls int
}

func (s *stubIntegration) Name() string  { return s.name }
func (s *stubIntegration) Enabled() bool { return s.enabled }

func (s *stubIntegration) HandleEvent(ctx context.Context, event membership.LifecycleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, event)
	return s.handleErr
}

func (s *stubIntegration) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthCalls++
	return s.healthErr
}
