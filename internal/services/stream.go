package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// StreamAccumulator assembles streamed deltas into a single assistant
// message. Content and reasoning are concatenated; tool calls are collected
// into slots keyed by their stream index. It is not safe for concurrent use.
type StreamAccumulator struct {
	content   strings.Builder
	reasoning strings.Builder
	slots     map[int]*world.ToolCall
}

// NewStreamAccumulator creates an empty accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{slots: make(map[int]*world.ToolCall)}
}

// Add folds d into the accumulated state. It reports whether visible text
// (content or reasoning) changed.
func (a *StreamAccumulator) Add(d Delta) bool {
	changed := false
	if d.Reasoning != "" {
		a.reasoning.WriteString(d.Reasoning)
		changed = true
	}
	if d.Content != "" {
		a.content.WriteString(d.Content)
		changed = true
	}
	for _, tc := range d.ToolCalls {
		slot, ok := a.slots[tc.Index]
		if !ok {
			slot = &world.ToolCall{Type: world.ToolCallTypeFunction}
			a.slots[tc.Index] = slot
		}
		if tc.ID != "" {
			slot.ID = tc.ID
		}
		if tc.Name != "" {
			slot.Function.Name = tc.Name
		}
		slot.Function.Arguments += tc.Arguments
	}
	return changed
}

// Content returns the content accumulated so far.
func (a *StreamAccumulator) Content() string {
	return a.content.String()
}

// Reasoning returns the reasoning accumulated so far.
func (a *StreamAccumulator) Reasoning() string {
	return a.reasoning.String()
}

// Finalize returns the assembled assistant message. Tool calls are ordered
// by ascending stream index; a call the provider never named an ID for is
// given a synthetic one so tool results can still reference it.
func (a *StreamAccumulator) Finalize() *world.Message {
	msg := world.NewAssistantMessage(a.content.String())
	msg.Reasoning = a.reasoning.String()

	if len(a.slots) == 0 {
		return &msg
	}
	indexes := make([]int, 0, len(a.slots))
	for i := range a.slots {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	msg.ToolCalls = make([]world.ToolCall, 0, len(indexes))
	for _, i := range indexes {
		call := *a.slots[i]
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d", i)
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	if msg.Text() == "" {
		msg.Content = nil
	}
	return &msg
}
