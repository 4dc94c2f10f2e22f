package world

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a message in the conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCallTypeFunction is the only tool call type the narrator emits.
const ToolCallTypeFunction = "function"

// FunctionCall is the name and raw JSON argument text of a requested tool.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a single tool invocation requested by an assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// Message is one unit of conversation history.
// Content is nil for assistant messages that only request tools.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    *string    `json:"content"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool role only
	Name       string     `json:"name,omitempty"`         // function name, tool role only
}

// Text returns a pointer to s, for populating Message.Content.
func Text(s string) *string {
	return &s
}

// Text returns the message content, or "" when it has none.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasToolCalls reports whether the message requests any tools.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   Text(content),
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with the given content.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   Text(content),
		Timestamp: time.Now(),
	}
}

// NewToolMessage creates a tool result message answering the given call.
func NewToolMessage(call ToolCall, result string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleTool,
		Content:    Text(result),
		Timestamp:  time.Now(),
		ToolCallID: call.ID,
		Name:       call.Function.Name,
	}
}

// Clone returns a copy of the message that shares no memory with m.
func (m Message) Clone() Message {
	out := m
	if m.Content != nil {
		out.Content = Text(*m.Content)
	}
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}
