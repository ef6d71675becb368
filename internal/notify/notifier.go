// Package notify delivers check-run summaries to external channels.
package notify

import "context"

// Notifier sends a notification message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
