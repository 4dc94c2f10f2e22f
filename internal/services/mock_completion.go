package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// MockResponse is one scripted completion: the deltas to stream, or an error.
type MockResponse struct {
	Deltas []Delta
	Err    error
}

// MockCompletionService is a scripted CompletionService for tests and
// offline play. Responses are consumed in order; once the script runs out
// every call returns DefaultResponse.
type MockCompletionService struct {
	StreamFunc func(ctx context.Context, req prompts.Request, onChunk ChunkFunc) (*world.Message, error)

	Responses       []MockResponse
	DefaultResponse string

	// Track calls for testing
	Calls []prompts.Request

	mu sync.Mutex // protects all fields above
}

// NewMockCompletionService creates a mock that plays back responses in order.
func NewMockCompletionService(responses ...MockResponse) *MockCompletionService {
	return &MockCompletionService{
		Responses:       responses,
		DefaultResponse: "Mock response",
		Calls:           make([]prompts.Request, 0),
	}
}

// TextResponse scripts a plain narration streamed as the given fragments.
func TextResponse(fragments ...string) MockResponse {
	deltas := make([]Delta, len(fragments))
	for i, f := range fragments {
		deltas[i] = Delta{Content: f}
	}
	return MockResponse{Deltas: deltas}
}

// ToolResponse scripts a completion that requests the given tool calls,
// each streamed as a single fragment.
func ToolResponse(calls ...world.ToolCall) MockResponse {
	deltas := make([]Delta, len(calls))
	for i, c := range calls {
		deltas[i] = Delta{ToolCalls: []ToolCallDelta{{
			Index:     i,
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		}}}
	}
	return MockResponse{Deltas: deltas}
}

// StreamCompletion plays the next scripted response.
func (m *MockCompletionService) StreamCompletion(ctx context.Context, req prompts.Request, onChunk ChunkFunc) (*world.Message, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	streamFunc := m.StreamFunc
	var resp MockResponse
	if len(m.Responses) > 0 {
		resp = m.Responses[0]
		m.Responses = m.Responses[1:]
	} else {
		resp = TextResponse(m.DefaultResponse)
	}
	m.mu.Unlock()

	if streamFunc != nil {
		return streamFunc(ctx, req, onChunk)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	acc := NewStreamAccumulator()
	for _, d := range resp.Deltas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if acc.Add(d) && onChunk != nil {
			onChunk(acc.Content(), acc.Reasoning())
		}
	}
	return acc.Finalize(), nil
}

// Enqueue appends responses to the script.
func (m *MockCompletionService) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, responses...)
}

// GetCalls returns a copy of the recorded requests in a thread-safe way.
func (m *MockCompletionService) GetCalls() []prompts.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]prompts.Request, len(m.Calls))
	copy(calls, m.Calls)
	return calls
}

// Reset clears call tracking and any remaining script.
func (m *MockCompletionService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]prompts.Request, 0)
	m.Responses = nil
}
