package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemberStatus is the member's lifecycle status
type MemberStatus = string

const (
	// MemberStatusPending is a registered member awaiting approval
	MemberStatusPending MemberStatus = "pending"
	// MemberStatusActive is a member in good standing
	MemberStatusActive MemberStatus = "active"
	// MemberStatusExpired is a member whose dues lapsed
	MemberStatusExpired MemberStatus = "expired"
	// MemberStatusSuspended is a member suspended by an admin
	MemberStatusSuspended MemberStatus = "suspended"
	// MemberStatusHonorary is a lifetime member, treated as active
	MemberStatusHonorary MemberStatus = "honorary"
)

// Member is the member model
type Member struct {
	bun.BaseModel `bun:"table:members,alias:mbr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          MemberRole   `bun:"member_role,notnull" json:"member_role,omitempty"`
	FirstName     string       `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string       `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username      string       `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string       `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string       `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string       `bun:"password_hash" json:"password_hash,omitempty"`
	Status        MemberStatus `bun:"status" json:"status,omitempty"`
	DuesPaidUntil *time.Time   `bun:"dues_paid_until,nullzero" json:"dues_paid_until,omitempty"`
	BypassDues    bool         `bun:"bypass_dues" json:"bypass_dues,omitempty"`
	ExpiresAt     *time.Time   `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	SuspendedAt   *time.Time   `bun:"suspended_at,nullzero" json:"suspended_at,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills rows that predate the status column. Those rows
// belong to members that were already let in, so they read as active.
func (m *Member) EnsureStatus() {
	if m.Status == "" {
		m.Status = MemberStatusActive
	}
}

// IsActive reports whether the member is in good standing. Honorary members
// count: they are active members that never pay dues.
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive || m.Status == MemberStatusHonorary
}

func (m *Member) IsExpired() bool {
	return m.Status == MemberStatusExpired
}

func (m *Member) IsSuspended() bool {
	return m.Status == MemberStatusSuspended
}

// IsAdmin reports whether the member carries the admin role
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// DuesLapsed reports whether the member's paid-through date is behind now.
// Members with BypassDues never lapse.
func (m *Member) DuesLapsed(now time.Time) bool {
	if m.BypassDues {
		return false
	}
	return m.DuesPaidUntil != nil && m.DuesPaidUntil.Before(now)
}

// Session is the server-side session record. TokenHash holds a one-way hash
// of the bearer token; the raw token is never persisted.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	MemberID      uuid.UUID  `bun:"member_id,notnull,type:uuid" json:"member_id,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull,unique" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastUsedAt    *time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`
}

// CSRFToken binds a token hash to a session. SessionID is unique: at most
// one live token per session.
type CSRFToken struct {
	bun.BaseModel `bun:"table:csrf_tokens,alias:csrf"`
	SessionID     uuid.UUID  `bun:"session_id,pk,type:uuid" json:"session_id,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
