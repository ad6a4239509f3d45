// Package chat posts member lifecycle notices to a chat webhook so staff see
// joins, activations, and expirations in their channel.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	membership "github.com/goliatone/go-membership"
)

// Adapter delivers lifecycle notices over an incoming-webhook URL. It
// implements membership.Integration.
type Adapter struct {
	webhookURL string
	client     *http.Client
	enabled    bool
	messages   map[membership.LifecycleEventType]string
}

var _ membership.Integration = (*Adapter)(nil)

type Option func(*Adapter)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	}
}

// Disabled turns the adapter off without unwiring it.
func Disabled() Option {
	return func(a *Adapter) {
		a.enabled = false
	}
}

// New builds the adapter. An empty webhook URL yields a disabled adapter.
func New(webhookURL string, opts ...Option) *Adapter {
	a := &Adapter{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    webhookURL != "",
		messages: map[membership.LifecycleEventType]string{
			membership.EventMemberCreated:   "%s signed up and is awaiting approval",
			membership.EventMemberActivated: "%s is now an active member",
			membership.EventMemberExpired:   "%s's membership has expired",
			membership.EventMemberDeleted:   "%s's membership was removed",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

func (a *Adapter) Name() string {
	return "chat"
}

func (a *Adapter) Enabled() bool {
	return a.enabled && a.webhookURL != ""
}

// HandleEvent posts a notice for the event. Event types without a message
// template are skipped silently, they are not a delivery failure.
func (a *Adapter) HandleEvent(ctx context.Context, event membership.LifecycleEvent) error {
	if event.Member == nil {
		return nil
	}

	template, ok := a.messages[event.EventType]
	if !ok {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf(template, displayName(event.Member)),
	})
	if err != nil {
		return fmt.Errorf("chat payload encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chat request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook responded %d", resp.StatusCode)
	}

	return nil
}

// HealthCheck verifies the webhook endpoint answers. Webhook providers
// typically reject GETs but still prove reachability.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.webhookURL == "" {
		return fmt.Errorf("chat: no webhook url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.webhookURL, nil)
	if err != nil {
		return fmt.Errorf("chat health request build: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	return nil
}

func displayName(m *membership.Member) string {
	name := m.FirstName + " " + m.LastName
	if name == " " {
		return m.Username
	}
	return name
}
