package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTurnStarted    EventType = "turn.started"
	EventTypeTurnProgress   EventType = "turn.progress"
	EventTypeTurnToolResult EventType = "turn.tool_result"
	EventTypeTurnCompleted  EventType = "turn.completed"
	EventTypeTurnFailed     EventType = "turn.failed"
	EventTypeStateUpdated   EventType = "state.updated"
)

// publishTimeout bounds each publish, as observers have no caller context.
const publishTimeout = 2 * time.Second

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Channel returns the pub/sub channel carrying a session's events.
func Channel(sessionID string) string {
	return fmt.Sprintf("session-events:%s", sessionID)
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish publishes event to its session channel.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	channel := Channel(event.SessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type)
	return nil
}

// Observer returns an engine.Observer that broadcasts one session's turn
// lifecycle.
func (b *Broadcaster) Observer(sessionID string) *SessionObserver {
	return &SessionObserver{b: b, sessionID: sessionID}
}

// SessionObserver translates engine notifications into events. Publish
// failures are logged and otherwise ignored; the turn does not depend on
// its audience.
type SessionObserver struct {
	b         *Broadcaster
	sessionID string
	loading   bool
}

var _ engine.Observer = (*SessionObserver)(nil)

func (o *SessionObserver) publish(t EventType, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	_ = o.b.Publish(ctx, Event{Type: t, SessionID: o.sessionID, Data: data})
}

// OnSnapshot announces turn starts and settled state changes.
func (o *SessionObserver) OnSnapshot(s *world.Snapshot) {
	if s.Loading {
		if !o.loading {
			o.publish(EventTypeTurnStarted, map[string]interface{}{
				"user_message": lastUserText(s),
			})
		}
		o.loading = true
		return
	}
	o.loading = false

	data := map[string]interface{}{
		"messages":  len(s.Messages),
		"inventory": len(s.Inventory),
		"memories":  len(s.Memories),
		"currency":  s.Currency.String(),
	}
	if loc := s.CurrentLocation(); loc != nil {
		data["location"] = loc.Name
		data["zone_id"] = s.CurrentZoneID
	}
	o.publish(EventTypeStateUpdated, data)
}

func (o *SessionObserver) OnProgress(messageID, content, reasoning string) {
	o.publish(EventTypeTurnProgress, map[string]interface{}{
		"message_id": messageID,
		"content":    content,
		"reasoning":  reasoning,
	})
}

func (o *SessionObserver) OnToolResult(outcome engine.ToolOutcome) {
	o.publish(EventTypeTurnToolResult, map[string]interface{}{
		"tool":         outcome.Call.Function.Name,
		"tool_call_id": outcome.Call.ID,
		"result":       outcome.Result,
		"applied":      outcome.Applied,
	})
}

func (o *SessionObserver) OnTurnFinished(result engine.TurnResult) {
	if result.Error != "" {
		o.publish(EventTypeTurnFailed, map[string]interface{}{
			"error":  result.Error,
			"rounds": result.Rounds,
		})
		return
	}
	o.publish(EventTypeTurnCompleted, map[string]interface{}{
		"narration":   result.Narration,
		"rounds":      result.Rounds,
		"tool_calls":  len(result.Tools),
		"cap_reached": result.CapReached,
	})
}

func lastUserText(s *world.Snapshot) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == world.RoleUser {
			return s.Messages[i].Text()
		}
	}
	return ""
}
