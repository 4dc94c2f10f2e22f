package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func TestStreamAccumulator_Content(t *testing.T) {
	acc := NewStreamAccumulator()
	assert.True(t, acc.Add(Delta{Content: "The door "}))
	assert.True(t, acc.Add(Delta{Reasoning: "think"}))
	assert.True(t, acc.Add(Delta{Content: "creaks."}))
	assert.False(t, acc.Add(Delta{}))

	msg := acc.Finalize()
	assert.Equal(t, world.RoleAssistant, msg.Role)
	assert.Equal(t, "The door creaks.", msg.Text())
	assert.Equal(t, "think", msg.Reasoning)
	assert.Empty(t, msg.ToolCalls)
	assert.NotEmpty(t, msg.ID)
}

func TestStreamAccumulator_ToolCallsByIndex(t *testing.T) {
	acc := NewStreamAccumulator()

	// Two calls interleaved, with the second started first.
	acc.Add(Delta{ToolCalls: []ToolCallDelta{{Index: 1, ID: "call_b", Name: "update_currency", Arguments: `{"gold_`}}})
	acc.Add(Delta{ToolCalls: []ToolCallDelta{{Index: 0, ID: "call_a", Name: "navigate", Arguments: `{"target`}}})
	acc.Add(Delta{ToolCalls: []ToolCallDelta{
		{Index: 0, Arguments: `_zone_id":"hall"}`},
		{Index: 1, Arguments: `delta":2}`},
	}})

	msg := acc.Finalize()
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "call_a", msg.ToolCalls[0].ID)
	assert.Equal(t, "navigate", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"target_zone_id":"hall"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, world.ToolCallTypeFunction, msg.ToolCalls[0].Type)
	assert.Equal(t, `{"gold_delta":2}`, msg.ToolCalls[1].Function.Arguments)
	assert.Nil(t, msg.Content, "tool-only messages carry no content")
}

func TestStreamAccumulator_LaterIDAndNameReplace(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(Delta{ToolCalls: []ToolCallDelta{{Index: 0, Arguments: "{"}}})
	acc.Add(Delta{ToolCalls: []ToolCallDelta{{Index: 0, ID: "call_x", Name: "upsert_memory", Arguments: "}"}}})

	msg := acc.Finalize()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_x", msg.ToolCalls[0].ID)
	assert.Equal(t, "upsert_memory", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, "{}", msg.ToolCalls[0].Function.Arguments)
}

func TestStreamAccumulator_SyntheticID(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(Delta{Content: "Moving.", ToolCalls: []ToolCallDelta{{Index: 3, Name: "navigate", Arguments: "{}"}}})

	msg := acc.Finalize()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_3", msg.ToolCalls[0].ID)
	assert.Equal(t, "Moving.", msg.Text())
}
