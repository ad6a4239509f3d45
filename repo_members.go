package membership

import (
	"context"
	"net/mail"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type members struct {
	repository.Repository[*Member]
	db *bun.DB
}

var _ Members = (*members)(nil)

// NewMembersRepository returns the bun-backed Members implementation
func NewMembersRepository(db *bun.DB) Members {
	repo := repository.NewRepository[*Member](db, repository.ModelHandlers[*Member]{
		NewRecord: func() *Member { return &Member{} },
		GetID: func(m *Member) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Member, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &members{
		Repository: repo,
		db:         db,
	}
}

func (r *members) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.fetchOne(ctx, "id", id.String())
}

func (r *members) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return r.fetchOne(ctx, "email", strings.TrimSpace(email))
}

func (r *members) GetByUsername(ctx context.Context, username string) (*Member, error) {
	return r.fetchOne(ctx, "username", strings.TrimSpace(username))
}

// GetByIdentifier resolves id, email, or username in that order
func (r *members) GetByIdentifier(ctx context.Context, identifier string) (*Member, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil, ErrMemberNotFound
	}

	columns := []string{"username"}
	if isEmail(trimmed) {
		columns = []string{"email", "username"}
	}
	if isUUID(trimmed) {
		columns = append([]string{"id"}, columns...)
	}

	for _, column := range columns {
		record, err := r.fetchOne(ctx, column, trimmed)
		if err == nil {
			return record, nil
		}
		if !goerrors.IsNotFound(err) {
			return nil, err
		}
	}

	return nil, ErrMemberNotFound.WithMetadata(map[string]any{
		"identifier": trimmed,
	})
}

func (r *members) fetchOne(ctx context.Context, column, value string) (*Member, error) {
	record := &Member{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMemberNotFound.WithMetadata(map[string]any{
				column: value,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "member lookup failed")
	}

	record.EnsureStatus()
	return record, nil
}

func (r *members) Create(ctx context.Context, record *Member) (*Member, error) {
	prepareMemberDefaults(record)
	return r.Repository.CreateTx(ctx, r.db, record)
}

func (r *members) Update(ctx context.Context, record *Member) (*Member, error) {
	return r.Repository.UpdateTx(ctx, r.db, record, repository.UpdateByID(record.ID.String()))
}

func (r *members) UpdateStatus(ctx context.Context, id uuid.UUID, status MemberStatus, opts ...StatusUpdateOption) (*Member, error) {
	record := &Member{
		ID:     id,
		Status: status,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(record)
		}
	}

	return r.Repository.UpdateTx(ctx, r.db, record, repository.UpdateByID(id.String()))
}

func (r *members) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Member)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "member delete failed")
	}
	return nil
}

func (r *members) ListActive(ctx context.Context) ([]*Member, error) {
	var records []*Member
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status = ?", MemberStatusActive).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "active member listing failed")
	}

	return records, nil
}

// HasAdmin reports whether any member carries the admin role. The setup gate
// uses it to decide whether first-run setup is still required.
func (r *members) HasAdmin(ctx context.Context) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*Member)(nil)).
		Where("?TableAlias.member_role = ?", string(RoleAdmin)).
		Count(ctx)

	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "admin existence check failed")
	}

	return count > 0, nil
}

// StatusUpdateOption allows callers to mutate the member record before
// persisting status changes.
type StatusUpdateOption func(*Member)

// WithExpiredAt sets the ExpiresAt timestamp during a status transition.
func WithExpiredAt(at *time.Time) StatusUpdateOption {
	return func(m *Member) {
		m.ExpiresAt = at
	}
}

// WithSuspendedAt sets the SuspendedAt timestamp during a status transition.
func WithSuspendedAt(at *time.Time) StatusUpdateOption {
	return func(m *Member) {
		m.SuspendedAt = at
	}
}

func prepareMemberDefaults(record *Member) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleMember
	}

	if record.Status == "" {
		record.Status = MemberStatusPending
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
