package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const requestsKey = "arena-requests"

// PhaseQueue is the global FIFO of phase requests shared by all workers
type PhaseQueue struct {
	client *Client
}

func NewPhaseQueue(client *Client) *PhaseQueue {
	return &PhaseQueue{
		client: client,
	}
}

// EnqueueRequest adds a phase request to the end of the queue
func (pq *PhaseQueue) EnqueueRequest(ctx context.Context, req *queue.PhaseRequest) error {
	if !req.Phase.Valid() {
		return fmt.Errorf("failed to enqueue request: unknown phase %q", req.Phase)
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := pq.client.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	pq.client.logger.Debug("Phase request enqueued",
		"request_id", req.RequestID,
		"phase", req.Phase,
		"session_id", req.SessionID.String(),
	)
	return nil
}

// DequeueRequest removes and returns the next request from the queue
// Returns nil if queue is empty
func (pq *PhaseQueue) DequeueRequest(ctx context.Context) (*queue.PhaseRequest, error) {
	result, err := pq.client.rdb.LPop(ctx, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// BlockingDequeueRequest blocks until a request is available or timeout passes.
// A timeout of 0 waits forever. Returns nil, nil on timeout or cancellation.
func (pq *PhaseQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.PhaseRequest, error) {
	result, err := pq.client.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// RequestQueueDepth returns the number of requests waiting
func (pq *PhaseQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := pq.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
