// Package notify publishes change events so other clients of the same data
// (a second browser tab, a dashboard) can refresh. Events are advisory; a
// failed publish never fails the write that triggered it.
package notify

import "context"

// Event describes one committed change to an entity collection.
type Event struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

type Notifier interface {
	EntityChanged(ctx context.Context, event Event) error
}

type NoopNotifier struct{}

func (NoopNotifier) EntityChanged(_ context.Context, _ Event) error {
	return nil
}
