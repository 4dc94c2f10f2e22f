package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/tools"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func TestNewVeniceService_MissingKey(t *testing.T) {
	_, err := NewVeniceService(VeniceConfig{}, nil)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestNewVeniceService_Defaults(t *testing.T) {
	service, err := NewVeniceService(VeniceConfig{APIKey: "test-api-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultVeniceModel, service.ModelName())
}

// sseServer replays chunks as an OpenAI-compatible event stream and
// captures the decoded request body.
func sseServer(t *testing.T, chunks []string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, c := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", c)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func chunk(delta string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":` + delta + `}]}`
}

func TestVeniceService_StreamCompletion(t *testing.T) {
	var captured map[string]any
	server := sseServer(t, []string{
		chunk(`{"role":"assistant","reasoning_content":"Plan."}`),
		chunk(`{"content":"You step "}`),
		chunk(`{"content":"inside."}`),
		chunk(`{"tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"navigate","arguments":"{\"target_zone_id\""}}]}`),
		chunk(`{"tool_calls":[{"index":0,"function":{"arguments":":\"hall\"}"}}]}`),
	}, &captured)
	defer server.Close()

	service, err := NewVeniceService(VeniceConfig{APIKey: "test-api-key", BaseURL: server.URL, Model: "test-model"}, nil)
	require.NoError(t, err)

	req := prompts.Request{
		System:  "system rules",
		History: []world.Message{world.NewUserMessage("I enter the cave.")},
		Tools:   tools.Definitions(),
	}
	var lastContent, lastReasoning string
	calls := 0
	msg, err := service.StreamCompletion(context.Background(), req, func(content, reasoning string) {
		calls++
		lastContent, lastReasoning = content, reasoning
	})
	require.NoError(t, err)

	assert.Equal(t, "You step inside.", msg.Text())
	assert.Equal(t, "Plan.", msg.Reasoning)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_a", msg.ToolCalls[0].ID)
	assert.Equal(t, `{"target_zone_id":"hall"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "You step inside.", lastContent)
	assert.Equal(t, "Plan.", lastReasoning)

	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, true, captured["stream"])
	assert.Equal(t, "auto", captured["tool_choice"])
	assert.Len(t, captured["tools"], 7)
	vp, ok := captured["venice_parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, vp["include_venice_system_prompt"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system rules", first["content"])
}

func TestVeniceService_StreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth"}}`)
	}))
	defer server.Close()

	service, err := NewVeniceService(VeniceConfig{APIKey: "test-api-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = service.StreamCompletion(context.Background(), prompts.Request{System: "x"}, nil)
	assert.Error(t, err)
}

func TestBuildMessages(t *testing.T) {
	call := world.ToolCall{ID: "call_1", Type: world.ToolCallTypeFunction,
		Function: world.FunctionCall{Name: "navigate", Arguments: `{"target_zone_id":"hall"}`}}
	assistant := world.Message{ID: "a", Role: world.RoleAssistant, ToolCalls: []world.ToolCall{call}}

	req := prompts.Request{
		System: "rules",
		History: []world.Message{
			world.NewToolMessage(world.ToolCall{ID: "call_0"}, "orphaned result"),
			world.NewAssistantMessage("Welcome."),
			world.NewUserMessage("Go to the hall."),
			assistant,
			world.NewToolMessage(call, "Player moved to Hall."),
			{ID: "empty", Role: world.RoleAssistant},
		},
	}

	raw, err := json.Marshal(buildMessages(req))
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	roles := make([]string, len(decoded))
	for i, m := range decoded {
		roles[i] = m["role"].(string)
	}
	assert.Equal(t, []string{"system", "assistant", "user", "assistant", "tool"}, roles)
	assert.Equal(t, "call_1", decoded[4]["tool_call_id"])

	toolCalls := decoded[3]["tool_calls"].([]any)
	require.Len(t, toolCalls, 1)
	fn := toolCalls[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "navigate", fn["name"])
}
