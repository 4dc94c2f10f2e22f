package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const requestsKey = "turn-requests"

// TurnRequest is a player turn waiting to be run by a worker.
type TurnRequest struct {
	RequestID  string    `json:"request_id"`
	SessionID  string    `json:"session_id"`
	Message    string    `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTurnRequest creates a request with a fresh ID.
func NewTurnRequest(sessionID, message string) *TurnRequest {
	return &TurnRequest{
		RequestID:  uuid.NewString(),
		SessionID:  sessionID,
		Message:    message,
		EnqueuedAt: time.Now(),
	}
}

// TurnQueue is a FIFO of turn requests shared by every worker.
type TurnQueue struct {
	client *Client
}

func NewTurnQueue(client *Client) *TurnQueue {
	return &TurnQueue{client: client}
}

// Enqueue adds a request to the end of the queue.
func (q *TurnQueue) Enqueue(ctx context.Context, req *TurnRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	q.client.logger.Debug("Turn request enqueued",
		"request_id", req.RequestID,
		"session_id", req.SessionID)
	return nil
}

// Dequeue blocks up to timeout for the next request. It returns nil, nil
// when the wait times out.
func (q *TurnQueue) Dequeue(ctx context.Context, timeout time.Duration) (*TurnRequest, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	var req TurnRequest
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Depth returns the number of queued requests.
func (q *TurnQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
