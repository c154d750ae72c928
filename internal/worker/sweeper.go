package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/tokens"
	"github.com/office-lunch/backend/pkg/queue"
)

// TokenSweeper purges expired API tokens. It serves two triggers: sweep
// jobs from the maintenance queue (the admin endpoint) and its own
// periodic ticker, so expired tokens age out even if nobody asks.
type TokenSweeper struct {
	tokens   *tokens.Service
	queue    *queue.Queue
	interval time.Duration
	logger   *zap.Logger
}

// NewTokenSweeper creates a token sweeper. interval <= 0 disables the
// ticker and leaves only queue-triggered sweeps.
func NewTokenSweeper(svc *tokens.Service, q *queue.Queue, interval time.Duration, logger *zap.Logger) *TokenSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSweeper{tokens: svc, queue: q, interval: interval, logger: logger}
}

// Run consumes the queue and ticks until ctx is cancelled.
func (s *TokenSweeper) Run(ctx context.Context) {
	if s.interval > 0 {
		go s.tick(ctx)
	}
	for {
		job, err := s.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("dequeue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := s.Process(ctx, job); err != nil {
			s.logger.Error("process job", zap.Error(err), zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		}
	}
}

// Process executes one maintenance job.
func (s *TokenSweeper) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeTokenSweep {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	return s.sweep(ctx)
}

func (s *TokenSweeper) tick(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error("scheduled sweep", zap.Error(err))
			}
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) error {
	n, err := s.tokens.Sweep(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("expired tokens purged", zap.Int("count", n))
	}
	return nil
}
