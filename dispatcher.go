package membership

import (
	"context"
)

// Integration is an external-system connector (access control, chat roles)
// that reacts to lifecycle events and can be independently enabled.
type Integration interface {
	Name() string
	Enabled() bool
	HandleEvent(ctx context.Context, event LifecycleEvent) error
	HealthCheck(ctx context.Context) error
}

// IntegrationHealth is one adapter's health check result.
type IntegrationHealth struct {
	Name string
	Err  error
}

// Dispatcher broadcasts lifecycle events to its integrations. The adapter
// set is fixed at construction; disabled adapters are never registered.
// Delivery is sequential and at-most-once: one adapter's failure is logged
// and the next adapter still receives the event. No retries.
type Dispatcher struct {
	logger       Logger
	integrations []Integration
}

var _ EventSink = (*Dispatcher)(nil)

type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger overrides the logger used for adapter failures.
func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher builds a dispatcher over the given adapters, keeping only
// those that report themselves enabled.
func NewDispatcher(integrations []Integration, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	for _, integration := range integrations {
		if integration == nil || !integration.Enabled() {
			continue
		}
		d.integrations = append(d.integrations, integration)
	}

	return d
}

// Integrations returns the names of the registered adapters
func (d *Dispatcher) Integrations() []string {
	names := make([]string, 0, len(d.integrations))
	for _, integration := range d.integrations {
		names = append(names, integration.Name())
	}
	return names
}

// HandleEvent implements EventSink, delivering the event to every registered
// adapter in order.
func (d *Dispatcher) HandleEvent(ctx context.Context, event LifecycleEvent) error {
	for _, integration := range d.integrations {
		if err := integration.HandleEvent(ctx, event); err != nil {
			d.logger.Error(
				"integration %s failed handling %s: %v",
				integration.Name(), event.EventType, err,
			)
		}
	}
	return nil
}

// HealthCheckAll checks every registered adapter. Aggregation only, no side
// effects on member state.
func (d *Dispatcher) HealthCheckAll(ctx context.Context) []IntegrationHealth {
	results := make([]IntegrationHealth, 0, len(d.integrations))
	for _, integration := range d.integrations {
		results = append(results, IntegrationHealth{
			Name: integration.Name(),
			Err:  integration.HealthCheck(ctx),
		})
	}
	return results
}
