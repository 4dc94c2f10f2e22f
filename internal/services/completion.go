package services

import (
	"context"
	"errors"

	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// ErrMissingAPIKey is returned when a live provider is configured without credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// ChunkFunc receives the accumulated content and reasoning after every
// streamed delta that changed either of them.
type ChunkFunc func(content, reasoning string)

// ToolCallDelta is one fragment of a streamed tool call. Fragments sharing
// an Index belong to the same call.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Delta is one incremental fragment of a streamed completion.
type Delta struct {
	Content   string
	Reasoning string
	ToolCalls []ToolCallDelta
}

// CompletionService streams one model completion for a request.
type CompletionService interface {
	// StreamCompletion sends req to the model, invoking onChunk as text
	// arrives, and returns the finalized assistant message.
	StreamCompletion(ctx context.Context, req prompts.Request, onChunk ChunkFunc) (*world.Message, error)
}
