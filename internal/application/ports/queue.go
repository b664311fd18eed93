package ports

import "context"

// TaskEnqueuer enqueues background tasks. Only the session purge sweep
// uses it today; without redis a noop implementation is wired instead.
type TaskEnqueuer interface {
	EnqueueSessionPurge(ctx context.Context) error
}
