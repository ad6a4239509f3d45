package membership

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterMemberMessage is the command payload for member registration.
// Activate skips the pending stage, used by first-run setup.
type RegisterMemberMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	Activate  bool   `json:"activate"`
}

func (e RegisterMemberMessage) Type() string { return "member.register" }

type RegisterMemberHandler struct {
	repo      RepositoryManager
	lifecycle LifecycleManager
	sink      EventSink
}

func (h *RegisterMemberHandler) Execute(ctx context.Context, event RegisterMemberMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during member registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterMemberHandler) execute(ctx context.Context, event RegisterMemberMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	lifecycle := h.lifecycle
	if lifecycle == nil {
		lifecycle = NewLifecycleManager(
			h.repo.Members(),
			WithLifecycleSink(h.sink),
		)
	}

	created, err := lifecycle.CreateMember(ctx, CreateMemberRequest{
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Username:  event.Username,
		Email:     event.Email,
		Phone:     event.Phone,
		Password:  event.Password,
		Role:      event.Role,
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "member registration failed")
	}

	if event.Activate {
		if _, err := lifecycle.Activate(ctx, created.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "member activation failed")
		}
	}

	return nil
}
