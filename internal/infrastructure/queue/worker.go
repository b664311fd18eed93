package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/retention"
)

// Worker runs Asynq task handlers. Call Run() to start.
type Worker struct {
	srv     *asynq.Server
	mux     *asynq.ServeMux
	sweeper *retention.Sweeper
	log     zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers.
func NewWorker(redisOpt asynq.RedisClientOpt, sweeper *retention.Sweeper, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, sweeper: sweeper, log: log}
	mux.HandleFunc(TypeSessionPurge, w.handleSessionPurge)
	return w
}

func (w *Worker) handleSessionPurge(ctx context.Context, _ *asynq.Task) error {
	if _, err := w.sweeper.Sweep(ctx); err != nil {
		w.log.Error().Err(err).Msg("session purge failed")
		return err
	}
	return nil
}

// Run starts the worker loop; it blocks until Shutdown.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
