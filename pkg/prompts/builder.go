package prompts

import (
	"fmt"

	"github.com/jwebster45206/chronicle-engine/pkg/tools"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// DefaultHistoryLimit is the number of prior messages forwarded per request.
const DefaultHistoryLimit = 15

// Request is everything a completion provider needs for one round trip.
type Request struct {
	System  string
	History []world.Message
	Tools   []tools.Definition
}

// Builder assembles a completion Request from a world snapshot using a
// fluent interface.
type Builder struct {
	snap         *world.Snapshot
	historyLimit int
	tools        []tools.Definition
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
	}
}

// WithSnapshot sets the world state the request is built from.
func (b *Builder) WithSnapshot(s *world.Snapshot) *Builder {
	b.snap = s
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithTools overrides the tool set. By default every tool is offered.
func (b *Builder) WithTools(defs []tools.Definition) *Builder {
	b.tools = defs
	return b
}

// Build constructs the request. The snapshot is not retained.
func (b *Builder) Build() (Request, error) {
	if b.snap == nil {
		return Request{}, fmt.Errorf("snapshot is required")
	}
	defs := b.tools
	if defs == nil {
		defs = tools.Definitions()
	}
	return Request{
		System:  SystemPrompt(b.snap),
		History: b.history(),
		Tools:   defs,
	}, nil
}

// history windows the conversation to the last historyLimit messages and
// drops system messages, which are never forwarded as history.
func (b *Builder) history() []world.Message {
	msgs := b.snap.Messages
	if b.historyLimit >= 0 && len(msgs) > b.historyLimit {
		msgs = msgs[len(msgs)-b.historyLimit:]
	}
	out := make([]world.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == world.RoleSystem {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

// BuildRequest is a convenience function for the common case.
func BuildRequest(s *world.Snapshot, historyLimit int) (Request, error) {
	return New().
		WithSnapshot(s).
		WithHistoryLimit(historyLimit).
		Build()
}
