package queue

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueSessionPurge(ctx context.Context) error {
	return nil
}

var _ ports.TaskEnqueuer = (*NoopEnqueuer)(nil)
