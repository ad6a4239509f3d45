// Package accesscontrol mirrors member standing into the door access
// system's redis instance. Controllers read the per-member keys; the pub/sub
// channel lets them react without polling.
package accesscontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	membership "github.com/goliatone/go-membership"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the per-member access keys
const DefaultKeyPrefix = "access:member:"

// DefaultChannel is the pub/sub channel access controllers subscribe to
const DefaultChannel = "membership.events"

const (
	stateAllow = "allow"
	stateDeny  = "deny"
)

// Adapter pushes member standing to redis. It implements
// membership.Integration.
type Adapter struct {
	client    *redis.Client
	keyPrefix string
	channel   string
	enabled   bool
	logger    membership.Logger
}

var _ membership.Integration = (*Adapter)(nil)

type Option func(*Adapter)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(a *Adapter) {
		if prefix != "" {
			a.keyPrefix = prefix
		}
	}
}

// WithChannel overrides the pub/sub channel.
func WithChannel(channel string) Option {
	return func(a *Adapter) {
		if channel != "" {
			a.channel = channel
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger membership.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Disabled turns the adapter off without unwiring it.
func Disabled() Option {
	return func(a *Adapter) {
		a.enabled = false
	}
}

// New builds the adapter over the given redis client. A nil client yields a
// disabled adapter, which the dispatcher drops at construction.
func New(client *redis.Client, opts ...Option) *Adapter {
	a := &Adapter{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		channel:   DefaultChannel,
		enabled:   client != nil,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

func (a *Adapter) Name() string {
	return "access_control"
}

func (a *Adapter) Enabled() bool {
	return a.enabled && a.client != nil
}

// HandleEvent writes the member's access state and announces the change.
// Deletions remove the key so a stale record can never open a door.
func (a *Adapter) HandleEvent(ctx context.Context, event membership.LifecycleEvent) error {
	if event.Member == nil {
		return nil
	}

	key := a.keyPrefix + event.Member.ID.String()

	switch event.EventType {
	case membership.EventMemberDeleted:
		if err := a.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("access control key delete: %w", err)
		}
	default:
		state := stateDeny
		if event.Member.IsActive() {
			state = stateAllow
		}
		if err := a.client.Set(ctx, key, state, 0).Err(); err != nil {
			return fmt.Errorf("access control key set: %w", err)
		}
	}

	return a.publish(ctx, event)
}

func (a *Adapter) publish(ctx context.Context, event membership.LifecycleEvent) error {
	payload, err := json.Marshal(map[string]any{
		"event":       event.EventType,
		"member_id":   event.Member.ID.String(),
		"status":      event.Member.Status,
		"occurred_at": event.OccurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("access control event encode: %w", err)
	}

	if err := a.client.Publish(ctx, a.channel, payload).Err(); err != nil {
		return fmt.Errorf("access control event publish: %w", err)
	}

	return nil
}

// HealthCheck pings redis.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("access control: no redis client configured")
	}
	return a.client.Ping(ctx).Err()
}
