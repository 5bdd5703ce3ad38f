package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 2 * time.Minute
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker processes phase requests from the queue
type Worker struct {
	id          string
	queue       *queue.PhaseQueue
	processor   *PhaseProcessor
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(queueClient *queue.PhaseQueue, processor *PhaseProcessor, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       queueClient,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		log:         log.With("worker_id", workerID),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker's lock owner name
func (w *Worker) ID() string {
	return w.id
}

// Start begins processing requests from the queue
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

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}

	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}

	w.log.Info("Received request from queue",
		"request_id", req.RequestID,
		"phase", req.Phase,
		"session_id", req.SessionID.String(),
	)

	locked, err := w.acquireSessionLock(req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		// Another worker holds this session
		// Re-queue at the end and try next request
		w.log.Info("Session already locked, re-queueing request",
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseSessionLock(req.SessionID)
	return w.processRequest(req)
}

func lockKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("arena-lock:%s", sessionID.String())
}

// acquireSessionLock returns true if the lock was acquired, false if already held
func (w *Worker) acquireSessionLock(sessionID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(sessionID), w.id, lockTTL).Result()
}

// releaseSessionLock deletes the lock only if this worker owns it
func (w *Worker) releaseSessionLock(sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), workerTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, w.redisClient, []string{lockKey(sessionID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release session lock", "error", err, "session_id", sessionID.String())
	}
}

// processRequest runs a single phase and publishes its outcome
func (w *Worker) processRequest(req *queuePkg.PhaseRequest) error {
	start := time.Now()
	phase := string(req.Phase)

	if err := w.broadcaster.PublishPhaseStarted(w.ctx, req.SessionID, req.RequestID, phase); err != nil {
		w.log.Error("Failed to publish started event", "error", err)
	}

	result, err := w.processor.Process(w.ctx, req)
	if err != nil {
		w.log.Error("Phase failed",
			"error", err,
			"request_id", req.RequestID,
			"phase", phase,
			"session_id", req.SessionID.String(),
		)
		if pubErr := w.broadcaster.PublishPhaseFailed(w.ctx, req.SessionID, req.RequestID, phase, err.Error()); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}
		return fmt.Errorf("failed to process %s: %w", phase, err)
	}

	result["duration_ms"] = time.Since(start).Milliseconds()
	w.log.Info("Phase processed successfully",
		"request_id", req.RequestID,
		"phase", phase,
		"duration_ms", result["duration_ms"],
	)

	if err := w.broadcaster.PublishPhaseCompleted(w.ctx, req.SessionID, req.RequestID, phase, result); err != nil {
		w.log.Error("Failed to publish completion event", "error", err)
	}
	return nil
}
