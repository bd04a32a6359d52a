package interfaces

import "context"

// EventPublisher emits engine events to an external sink. Publishing is
// best-effort: a failure is a diagnostic, never a reason to roll back a
// committed ledger mutation.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
