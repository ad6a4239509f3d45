package membership

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DuesSweepMessage triggers the periodic dues sweep plus session store
// maintenance. Meant to run from a scheduler.
type DuesSweepMessage struct {
	OnResponse func(*DuesSweepResponse)
}

func (e DuesSweepMessage) Type() string { return "member.dues_sweep" }

// DuesSweepResponse reports what the sweep touched.
type DuesSweepResponse struct {
	Expired         []*Member `json:"expired"`
	SessionsPurged  int64     `json:"sessions_purged"`
	TokensCollected int64     `json:"tokens_collected"`
}

type DuesSweepHandler struct {
	repo      RepositoryManager
	lifecycle LifecycleManager
	logger    Logger
}

func (h *DuesSweepHandler) Execute(ctx context.Context, event DuesSweepMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during dues sweep",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DuesSweepHandler) execute(ctx context.Context, event DuesSweepMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	logger := h.logger
	if logger == nil {
		logger = defLogger{}
	}

	lifecycle := h.lifecycle
	if lifecycle == nil {
		lifecycle = NewLifecycleManager(h.repo.Members(), WithLifecycleLogger(logger))
	}

	expired, err := lifecycle.CheckExpiredMembers(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "dues sweep failed")
	}

	// Maintenance piggybacks on the sweep schedule. Failures here do not
	// undo the member expirations above.
	purged, err := h.repo.Sessions().DeleteExpired(ctx)
	if err != nil {
		logger.Warn("dues sweep: expired session purge failed: %v", err)
	}

	collected, err := h.repo.CSRFTokens().DeleteOrphaned(ctx)
	if err != nil {
		logger.Warn("dues sweep: orphaned csrf token purge failed: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&DuesSweepResponse{
			Expired:         expired,
			SessionsPurged:  purged,
			TokensCollected: collected,
		})
	}

	return nil
}
