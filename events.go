package membership

import (
	"context"
	"time"
)

// LifecycleEventType enumerates member lifecycle notifications.
type LifecycleEventType string

const (
	EventMemberCreated   LifecycleEventType = "member.created"
	EventMemberActivated LifecycleEventType = "member.activated"
	EventMemberExpired   LifecycleEventType = "member.expired"
	EventMemberUpdated   LifecycleEventType = "member.updated"
	EventMemberDeleted   LifecycleEventType = "member.deleted"
)

// LifecycleEvent carries a full member snapshot for integrations. Events are
// transient; persisting an audit trail is a collaborator's concern.
type LifecycleEvent struct {
	EventType  LifecycleEventType
	Member     *Member
	OldMember  *Member
	OccurredAt time.Time
}

// EventSink consumes lifecycle events.
type EventSink interface {
	HandleEvent(ctx context.Context, event LifecycleEvent) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, event LifecycleEvent) error

// HandleEvent implements EventSink.
func (f EventSinkFunc) HandleEvent(ctx context.Context, event LifecycleEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventSink struct{}

func (noopEventSink) HandleEvent(context.Context, LifecycleEvent) error {
	return nil
}

func normalizeEventSink(s EventSink) EventSink {
	if s == nil {
		return noopEventSink{}
	}
	return s
}
