package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestTurnQueue_FIFO(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewTurnQueue(client)
	ctx := context.Background()

	messages := []string{"I open the door.", "I step through.", "I light a torch."}
	for _, m := range messages {
		if err := q.Enqueue(ctx, NewTurnRequest("sess-1", m)); err != nil {
			t.Fatalf("Failed to enqueue: %v", err)
		}
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(messages) {
		t.Errorf("Expected depth %d, got %d", len(messages), depth)
	}

	for i, want := range messages {
		req, err := q.Dequeue(ctx, time.Second)
		if err != nil {
			t.Fatalf("Failed to dequeue: %v", err)
		}
		if req == nil {
			t.Fatalf("Expected request %d, got nil", i)
		}
		if req.Message != want {
			t.Errorf("Request %d: expected %q, got %q", i, want, req.Message)
		}
		if req.SessionID != "sess-1" || req.RequestID == "" {
			t.Errorf("Request %d: unexpected identity %+v", i, req)
		}
	}
}

func TestTurnQueue_DequeueTimeout(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewTurnQueue(client)
	done := make(chan struct{})
	var (
		req *TurnRequest
		err error
	)
	go func() {
		defer close(done)
		req, err = q.Dequeue(context.Background(), time.Second)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Dequeue did not return after timeout")
	}
	if err != nil {
		t.Fatalf("Expected no error on timeout, got %v", err)
	}
	if req != nil {
		t.Errorf("Expected nil request on timeout, got %+v", req)
	}
}

func TestTurnQueue_BadPayload(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	if _, err := mr.RPush(requestsKey, "{not json"); err != nil {
		t.Fatalf("Failed to seed queue: %v", err)
	}
	q := NewTurnQueue(client)
	if _, err := q.Dequeue(context.Background(), time.Second); err == nil {
		t.Error("Expected parse error")
	}
}
