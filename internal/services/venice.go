package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/tools"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	DefaultVeniceBaseURL = "https://api.venice.ai/api/v1"
	DefaultVeniceModel   = "zai-org-glm-4.7"
	DefaultVeniceTimeout = 120 * time.Second

	reasoningField = "reasoning_content"
)

// VeniceConfig configures the Venice provider. Venice speaks the OpenAI
// chat-completions protocol, so any compatible endpoint works.
type VeniceConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// VeniceService implements CompletionService for Venice AI.
type VeniceService struct {
	client    openai.Client
	modelName string
	logger    *slog.Logger
}

// NewVeniceService creates a Venice provider. It fails with ErrMissingAPIKey
// when no key is configured.
func NewVeniceService(cfg VeniceConfig, logger *slog.Logger) (*VeniceService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultVeniceBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVeniceModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultVeniceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := openai.NewClient(
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	return &VeniceService{
		client:    client,
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

// ModelName returns the model requests are sent to.
func (v *VeniceService) ModelName() string {
	return v.modelName
}

// StreamCompletion streams a chat completion with tool calling enabled.
func (v *VeniceService) StreamCompletion(ctx context.Context, req prompts.Request, onChunk ChunkFunc) (*world.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(v.modelName),
		Messages: buildMessages(req),
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}

	start := time.Now()
	stream := v.client.Chat.Completions.NewStreaming(ctx, params,
		option.WithJSONSet("venice_parameters", map[string]any{"include_venice_system_prompt": false}),
	)
	defer func() { _ = stream.Close() }()

	acc := NewStreamAccumulator()
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if acc.Add(chunkDelta(chunk.Choices[0].Delta)) && onChunk != nil {
			onChunk(acc.Content(), acc.Reasoning())
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("venice stream failed: %w", err)
	}

	msg := acc.Finalize()
	v.logger.Debug("Venice completion finished",
		"model", v.modelName,
		"duration", time.Since(start),
		"content_length", len(msg.Text()),
		"tool_calls", len(msg.ToolCalls))
	return msg, nil
}

func chunkDelta(d openai.ChatCompletionChunkChoiceDelta) Delta {
	out := Delta{Content: d.Content}
	if field, ok := d.JSON.ExtraFields[reasoningField]; ok {
		out.Reasoning = decodeReasoning(field.Raw())
	}
	for _, tc := range d.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCallDelta{
			Index:     int(tc.Index),
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

// decodeReasoning unwraps the raw JSON of the reasoning extension field.
func decodeReasoning(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return ""
	}
	return s
}

func buildTools(defs []tools.Definition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(def.Parameters),
			},
		})
	}
	return out
}

// buildMessages maps the request onto provider roles. Tool results whose
// originating call fell outside the history window are dropped, as are
// assistant turns that carry nothing.
func buildMessages(req prompts.Request) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	out = append(out, openai.SystemMessage(req.System))

	pending := make(map[string]bool)
	for _, m := range req.History {
		switch m.Role {
		case world.RoleUser:
			out = append(out, openai.UserMessage(m.Text()))

		case world.RoleAssistant:
			if !m.HasToolCalls() {
				if m.Text() != "" {
					out = append(out, openai.AssistantMessage(m.Text()))
				}
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				pending[tc.ID] = true
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if m.Text() != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Text())}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case world.RoleTool:
			if !pending[m.ToolCallID] {
				continue
			}
			out = append(out, openai.ToolMessage(m.Text(), m.ToolCallID))
		}
	}
	return out
}
