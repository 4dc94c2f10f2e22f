package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/chronicle-engine/internal/services/events"
	"github.com/jwebster45206/chronicle-engine/internal/services/queue"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	dequeueTimeout = 5 * time.Second
	requeueDelay   = 250 * time.Millisecond
)

// TurnRunner runs one turn for a session. sessions.Manager implements it.
type TurnRunner interface {
	Submit(ctx context.Context, sessionID, text string) (*engine.TurnResult, *world.Snapshot, error)
}

// Requests is the queue a worker consumes.
type Requests interface {
	Enqueue(ctx context.Context, req *queue.TurnRequest) error
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.TurnRequest, error)
}

// Worker processes turn requests from the queue
type Worker struct {
	id          string
	queue       Requests
	runner      TurnRunner
	broadcaster *events.Broadcaster
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance. broadcaster may be nil.
func New(q Requests, runner TurnRunner, broadcaster *events.Broadcaster, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		id:          workerID,
		queue:       q,
		runner:      runner,
		broadcaster: broadcaster,
		log:         log.With("worker_id", workerID),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start processes requests until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err)
				// Continue processing even on error
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextRequest pulls the next request from the queue and runs it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.Dequeue(w.ctx, dequeueTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}
	return w.processRequest(req)
}

func (w *Worker) processRequest(req *queue.TurnRequest) error {
	log := w.log.With("request_id", req.RequestID, "session_id", req.SessionID)
	log.Info("Processing turn request", "queued_for", time.Since(req.EnqueuedAt))

	start := time.Now()
	result, _, err := w.runner.Submit(w.ctx, req.SessionID, req.Message)
	switch {
	case errors.Is(err, engine.ErrTurnInProgress):
		// Another turn holds the session; try again later.
		log.Info("Session busy, re-queueing request")
		time.Sleep(requeueDelay)
		if err := w.queue.Enqueue(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil

	case err != nil && result == nil:
		// The turn never started, so no observer reported it.
		w.publishFailure(req, err)
		return fmt.Errorf("failed to run turn: %w", err)

	case err != nil:
		log.Warn("Turn failed", "error", err, "duration", time.Since(start))
		return nil
	}

	log.Info("Turn request completed",
		"rounds", result.Rounds,
		"tool_calls", len(result.Tools),
		"duration", time.Since(start))
	return nil
}

func (w *Worker) publishFailure(req *queue.TurnRequest, err error) {
	if w.broadcaster == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	event := events.Event{
		Type:      events.EventTypeTurnFailed,
		SessionID: req.SessionID,
		Data: map[string]interface{}{
			"request_id": req.RequestID,
			"error":      err.Error(),
		},
	}
	if pubErr := w.broadcaster.Publish(ctx, event); pubErr != nil {
		w.log.Error("Failed to publish failure event", "error", pubErr)
	}
}
