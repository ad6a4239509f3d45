package membership

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidStatusTransition is returned when a requested status change is not allowed.
var ErrInvalidStatusTransition = goerrors.New("invalid member status transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_STATUS_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// LifecycleManager owns member status transitions. Direct repository writes
// to status outside these operations are not sanctioned.
type LifecycleManager interface {
	CreateMember(ctx context.Context, req CreateMemberRequest) (*Member, error)
	Activate(ctx context.Context, id uuid.UUID) (*Member, error)
	Expire(ctx context.Context, id uuid.UUID) (*Member, error)
	UpdateMember(ctx context.Context, record *Member) (*Member, error)
	DeleteMember(ctx context.Context, id uuid.UUID) error
	CheckExpiredMembers(ctx context.Context) ([]*Member, error)
}

// CreateMemberRequest is the payload for registering a member
type CreateMemberRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Validate will run validation rules
func (r CreateMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

type LifecycleOption func(*lifecycleManager)

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(lm *lifecycleManager) {
		if clock != nil {
			lm.now = clock
		}
	}
}

// WithLifecycleSink sets the EventSink that receives lifecycle events.
func WithLifecycleSink(sink EventSink) LifecycleOption {
	return func(lm *lifecycleManager) {
		lm.sink = normalizeEventSink(sink)
	}
}

// WithLifecycleLogger overrides the logger used for sink and sweep failures.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(lm *lifecycleManager) {
		if logger != nil {
			lm.logger = logger
		}
	}
}

// WithLifecycleRegion sets the default region for phone normalization.
func WithLifecycleRegion(region string) LifecycleOption {
	return func(lm *lifecycleManager) {
		if region != "" {
			lm.phoneRegion = region
		}
	}
}

// NewLifecycleManager returns the default implementation backed by the
// provided members repository.
func NewLifecycleManager(members Members, opts ...LifecycleOption) LifecycleManager {
	lm := &lifecycleManager{
		members: members,
		transitions: map[MemberStatus]map[MemberStatus]struct{}{
			MemberStatusPending: {
				MemberStatusActive:    {},
				MemberStatusSuspended: {},
			},
			MemberStatusActive: {
				MemberStatusExpired:   {},
				MemberStatusSuspended: {},
				MemberStatusHonorary:  {},
			},
			MemberStatusSuspended: {
				MemberStatusActive:  {},
				MemberStatusExpired: {},
			},
			MemberStatusExpired: {
				MemberStatusActive: {},
			},
			MemberStatusHonorary: {
				MemberStatusActive:    {},
				MemberStatusSuspended: {},
			},
		},
		now:         time.Now,
		sink:        noopEventSink{},
		logger:      defLogger{},
		phoneRegion: "US",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(lm)
		}
	}

	return lm
}

type lifecycleManager struct {
	members     Members
	transitions map[MemberStatus]map[MemberStatus]struct{}
	now         func() time.Time
	sink        EventSink
	logger      Logger
	phoneRegion string
}

// CreateMember registers a member after checking email and username are
// free, so duplicates surface as an actionable Conflict instead of a raw
// storage constraint error.
func (lm *lifecycleManager) CreateMember(ctx context.Context, req CreateMemberRequest) (*Member, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid member payload").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := lm.ensureIdentifierFree(ctx, "email", req.Email); err != nil {
		return nil, err
	}

	username := resolveUsername(req.Username, req.Email)
	if err := lm.ensureIdentifierFree(ctx, "username", username); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := RoleMember
	if parsed, ok := ParseRole(req.Role); ok {
		role = parsed
	}

	record := &Member{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		Phone:        lm.normalizePhone(req.Phone),
		PasswordHash: hash,
		Role:         role,
		Status:       MemberStatusPending,
	}

	created, err := lm.members.Create(ctx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create member")
	}

	lm.emit(ctx, LifecycleEvent{
		EventType: EventMemberCreated,
		Member:    created,
	})

	return created, nil
}

// Activate is idempotent: an already-active member is returned as-is and no
// event is emitted.
func (lm *lifecycleManager) Activate(ctx context.Context, id uuid.UUID) (*Member, error) {
	record, err := lm.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Status == MemberStatusActive {
		return record, nil
	}

	if !lm.canTransition(record.Status, MemberStatusActive) {
		return nil, ErrInvalidStatusTransition.WithMetadata(map[string]any{
			"from": record.Status,
			"to":   MemberStatusActive,
		})
	}

	updated, err := lm.members.UpdateStatus(ctx, id, MemberStatusActive,
		WithExpiredAt(nil),
		WithSuspendedAt(nil),
	)
	if err != nil {
		return nil, err
	}

	lm.emit(ctx, LifecycleEvent{
		EventType: EventMemberActivated,
		Member:    updated,
	})

	return updated, nil
}

// Expire transitions the member to Expired and stamps expires_at. Members
// with bypass_dues cannot be expired through this path, ever.
func (lm *lifecycleManager) Expire(ctx context.Context, id uuid.UUID) (*Member, error) {
	record, err := lm.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.BypassDues {
		return nil, ErrBypassDues.WithMetadata(map[string]any{
			"member_id": id.String(),
		})
	}

	if record.Status == MemberStatusExpired {
		return record, nil
	}

	if !lm.canTransition(record.Status, MemberStatusExpired) {
		return nil, ErrInvalidStatusTransition.WithMetadata(map[string]any{
			"from": record.Status,
			"to":   MemberStatusExpired,
		})
	}

	now := lm.now()
	updated, err := lm.members.UpdateStatus(ctx, id, MemberStatusExpired,
		WithExpiredAt(&now),
	)
	if err != nil {
		return nil, err
	}

	lm.emit(ctx, LifecycleEvent{
		EventType: EventMemberExpired,
		Member:    updated,
	})

	return updated, nil
}

func (lm *lifecycleManager) UpdateMember(ctx context.Context, record *Member) (*Member, error) {
	old, err := lm.members.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	updated, err := lm.members.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	lm.emit(ctx, LifecycleEvent{
		EventType: EventMemberUpdated,
		Member:    updated,
		OldMember: old,
	})

	return updated, nil
}

func (lm *lifecycleManager) DeleteMember(ctx context.Context, id uuid.UUID) error {
	old, err := lm.members.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := lm.members.Delete(ctx, id); err != nil {
		return err
	}

	lm.emit(ctx, LifecycleEvent{
		EventType: EventMemberDeleted,
		Member:    old,
	})

	return nil
}

// CheckExpiredMembers sweeps active members whose dues lapsed and expires
// them. Individual failures are logged and skipped; a partial sweep is
// acceptable, a halted sweep is not.
func (lm *lifecycleManager) CheckExpiredMembers(ctx context.Context) ([]*Member, error) {
	active, err := lm.members.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := lm.now()
	expired := make([]*Member, 0)

	for _, record := range active {
		if record.BypassDues {
			continue
		}
		if !record.DuesLapsed(now) {
			continue
		}

		updated, err := lm.Expire(ctx, record.ID)
		if err != nil {
			lm.logger.Warn("dues sweep: expiring member %s failed: %v", record.ID, err)
			continue
		}

		expired = append(expired, updated)
	}

	return expired, nil
}

func (lm *lifecycleManager) canTransition(from, to MemberStatus) bool {
	if allowed, ok := lm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (lm *lifecycleManager) ensureIdentifierFree(ctx context.Context, field, value string) error {
	var err error
	switch field {
	case "email":
		_, err = lm.members.GetByEmail(ctx, value)
	default:
		_, err = lm.members.GetByUsername(ctx, value)
	}

	if err == nil {
		return ErrDuplicateMember.WithMetadata(map[string]any{
			field: value,
		})
	}

	if goerrors.IsNotFound(err) {
		return nil
	}

	return err
}

func (lm *lifecycleManager) normalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, lm.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return strings.TrimSpace(phone)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func (lm *lifecycleManager) emit(ctx context.Context, event LifecycleEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = lm.now()
	}

	sink := normalizeEventSink(lm.sink)
	if err := sink.HandleEvent(ctx, event); err != nil {
		lm.logger.Warn("lifecycle event sink error: %v", err)
	}
}

func resolveUsername(username, email string) string {
	if username != "" {
		return strings.TrimSpace(username)
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return strings.TrimSpace(username)
}
