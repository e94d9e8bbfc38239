package fraud

import (
	"context"
	"time"

	"github.com/creatorcart/backend/pkg/logger"
)

// Worker evaluates orders off the request path. Order ingestion enqueues an
// order id and returns immediately; evaluation failures are logged here and
// never surface to the request that created the order.
type Worker struct {
	service *Service
	logger  logger.Logger
	queue   chan string
	timeout time.Duration
}

// NewWorker creates a worker with a bounded queue. A full queue drops the
// enqueue rather than blocking the caller.
func NewWorker(service *Service, log logger.Logger, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Worker{
		service: service,
		logger:  log,
		queue:   make(chan string, queueSize),
		timeout: 30 * time.Second,
	}
}

// Enqueue hands an order off for asynchronous evaluation. Returns false when
// the queue is saturated; the order still settles, it just goes unscreened.
func (w *Worker) Enqueue(orderID string) bool {
	select {
	case w.queue <- orderID:
		return true
	default:
		w.logger.Warn("fraud queue full, dropping evaluation", "order_id", orderID)
		return false
	}
}

// Run drains the queue until ctx is cancelled. Intended to be started once
// from main as a goroutine.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("fraud worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("fraud worker stopped")
			return

		case orderID := <-w.queue:
			evalCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
			flags, err := w.service.EvaluateOrder(evalCtx, orderID)
			cancel()

			if err != nil {
				// Best effort: log and move on
				w.logger.Error("fraud evaluation failed", "order_id", orderID, "error", err)
				continue
			}
			if len(flags) > 0 {
				w.logger.Info("fraud evaluation complete",
					"order_id", orderID, "flags", len(flags))
			}
		}
	}
}
