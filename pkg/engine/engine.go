package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/tools"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	// MaxTurns bounds the completion round trips in one submitted turn.
	MaxTurns = 5
	// ProgressInterval is the minimum gap between progress notifications.
	ProgressInterval = 75 * time.Millisecond
	// FailureFallback is recorded when a failure carries no message.
	FailureFallback = "Communication failure."
	// WelcomeMessageID identifies the greeting of a fresh session.
	WelcomeMessageID = "welcome"
)

var (
	// ErrTurnInProgress is returned when a turn is submitted, or the world
	// is edited, while another turn is running.
	ErrTurnInProgress = errors.New("turn already in progress")
	// ErrEmptyInput is returned for blank player input. Nothing changes.
	ErrEmptyInput = errors.New("empty input")
)

// Config configures an Engine.
type Config struct {
	SessionID        string
	Completion       services.CompletionService
	Logger           *slog.Logger
	WorldPrompt      string // default world prompt; DefaultWorldPrompt when empty
	ModelName        string // named in the welcome message
	HistoryLimit     int    // prompts.DefaultHistoryLimit when zero
	ProgressInterval time.Duration
}

// Engine runs the turn loop for one session. It owns the canonical world
// snapshot; everything outside gets copies.
type Engine struct {
	id           string
	completion   services.CompletionService
	dispatcher   *tools.Dispatcher
	logger       *slog.Logger
	worldPrompt  string
	modelName    string
	historyLimit int
	interval     time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	snap  *world.Snapshot
	state TurnState

	obsMu     sync.RWMutex
	observers []Observer
}

// New creates an engine. A nil snapshot starts a fresh session with the
// welcome message; otherwise the snapshot is adopted as the session state.
func New(cfg Config, snap *world.Snapshot) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	logger = logger.With("session_id", cfg.SessionID)
	if cfg.WorldPrompt == "" {
		cfg.WorldPrompt = prompts.DefaultWorldPrompt
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = prompts.DefaultHistoryLimit
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = ProgressInterval
	}

	e := &Engine{
		id:           cfg.SessionID,
		completion:   cfg.Completion,
		dispatcher:   tools.NewDispatcher(logger),
		logger:       logger,
		worldPrompt:  cfg.WorldPrompt,
		modelName:    cfg.ModelName,
		historyLimit: cfg.HistoryLimit,
		interval:     cfg.ProgressInterval,
		now:          time.Now,
		state:        StateIdle,
	}
	if snap == nil {
		e.snap = e.freshSnapshot(cfg.WorldPrompt)
	} else {
		e.snap = snap.Clone()
		// A persisted session cannot be mid-turn.
		e.snap.Loading = false
	}
	return e
}

func (e *Engine) freshSnapshot(worldPrompt string) *world.Snapshot {
	s := world.New(worldPrompt)
	welcome := world.NewAssistantMessage(prompts.Welcome(e.modelName))
	welcome.ID = WelcomeMessageID
	s.Messages = append(s.Messages, welcome)
	return s
}

// ID returns the session ID.
func (e *Engine) ID() string {
	return e.id
}

// AddObserver registers o for all future notifications.
func (e *Engine) AddObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

// RemoveObserver unregisters o.
func (e *Engine) RemoveObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, existing := range e.observers {
		if existing == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

func (e *Engine) notify(fn func(Observer)) {
	e.obsMu.RLock()
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.obsMu.RUnlock()
	for _, o := range observers {
		fn(o)
	}
}

// Snapshot returns a copy of the current world state.
func (e *Engine) Snapshot() *world.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Clone()
}

// State returns the current turn state.
func (e *Engine) State() TurnState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// publish replaces the canonical snapshot with a copy of working. The open
// panel is owned by the presentation layer and survives publication.
func (e *Engine) publish(working *world.Snapshot, state TurnState) {
	e.mu.Lock()
	panel := e.snap.ActivePanel
	e.snap = working.Clone()
	e.snap.ActivePanel = panel
	e.state = state
	out := e.snap.Clone()
	e.mu.Unlock()

	e.notify(func(o Observer) { o.OnSnapshot(out) })
}

// Submit runs one player turn to completion: the player's message, then up
// to MaxTurns completion rounds, dispatching any requested tools between
// rounds. Failures are recorded in the snapshot and also returned.
func (e *Engine) Submit(ctx context.Context, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	e.mu.Lock()
	if e.state.Running() {
		e.mu.Unlock()
		return nil, ErrTurnInProgress
	}
	e.state = StateAwaitingCompletion
	working := e.snap.Clone()
	e.mu.Unlock()

	working.Messages = append(working.Messages, world.NewUserMessage(text))
	working.Loading = true
	working.Error = ""
	e.publish(working, StateAwaitingCompletion)

	start := time.Now()
	e.logger.Info("Turn started", "input_length", len(text))

	result := &TurnResult{}
	working, err := e.runTurn(ctx, working, result)

	working.Loading = false
	state := StateDone
	if err != nil {
		state = StateFailed
		working.Error = err.Error()
		if working.Error == "" {
			working.Error = FailureFallback
		}
		result.Error = working.Error
		e.logger.Error("Turn failed",
			"error", err,
			"rounds", result.Rounds,
			"duration", time.Since(start))
	} else {
		result.Narration = working.LastAssistantText()
		e.logger.Info("Turn completed",
			"rounds", result.Rounds,
			"tool_calls", len(result.Tools),
			"cap_reached", result.CapReached,
			"duration", time.Since(start))
	}
	e.publish(working, state)
	e.notify(func(o Observer) { o.OnTurnFinished(*result) })
	return result, err
}

func (e *Engine) runTurn(ctx context.Context, working *world.Snapshot, result *TurnResult) (*world.Snapshot, error) {
	if e.completion == nil {
		return working, errors.New("no completion service configured")
	}

	for round := 1; round <= MaxTurns; round++ {
		result.Rounds = round

		req, err := prompts.New().
			WithSnapshot(working).
			WithHistoryLimit(e.historyLimit).
			Build()
		if err != nil {
			return working, fmt.Errorf("failed to build request: %w", err)
		}

		placeholder := world.NewAssistantMessage("")
		working.Messages = append(working.Messages, placeholder)
		e.publish(working, StateAwaitingCompletion)

		var partial streamed
		msg, err := e.completion.StreamCompletion(ctx, req, e.progressFunc(placeholder.ID, &partial))
		if err != nil {
			// Keep whatever narration arrived before the failure.
			if i := messageIndex(working.Messages, placeholder.ID); i >= 0 {
				working.Messages[i].Content = world.Text(partial.content)
				working.Messages[i].Reasoning = partial.reasoning
			}
			return working, err
		}

		final := *msg
		final.ID = placeholder.ID
		if i := messageIndex(working.Messages, placeholder.ID); i >= 0 {
			working.Messages[i] = final
		} else {
			working.Messages = append(working.Messages, final)
		}
		result.Message = &final

		if !final.HasToolCalls() {
			return working, nil
		}

		e.publish(working, StateDispatchingTools)
		for _, call := range final.ToolCalls {
			res, err := e.dispatch(call, working)
			if err != nil {
				return working, err
			}
			working = res.Snapshot
			working.Loading = true
			working.Messages = append(working.Messages, world.NewToolMessage(call, res.Text))

			outcome := ToolOutcome{Call: call, Result: res.Text, Applied: res.Applied}
			result.Tools = append(result.Tools, outcome)
			e.logger.Debug("Tool dispatched",
				"tool", call.Function.Name,
				"tool_call_id", call.ID,
				"applied", res.Applied)
			e.publish(working, StateDispatchingTools)
			e.notify(func(o Observer) { o.OnToolResult(outcome) })
		}
	}

	result.CapReached = true
	e.logger.Warn("Turn reached round cap", "max_turns", MaxTurns)
	return working, nil
}

// dispatch runs one tool call, converting a panic in tool code into a
// turn failure.
func (e *Engine) dispatch(call world.ToolCall, snap *world.Snapshot) (res tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s failed: %v", call.Function.Name, r)
		}
	}()
	return e.dispatcher.Dispatch(call, snap), nil
}

// streamed holds the latest accumulated text of an in-flight completion.
type streamed struct {
	content   string
	reasoning string
}

// progressFunc returns the stream callback for the placeholder messageID.
// Every chunk is recorded in partial; the canonical placeholder is updated
// and observers notified at most once per progress interval.
func (e *Engine) progressFunc(messageID string, partial *streamed) services.ChunkFunc {
	var last time.Time
	return func(content, reasoning string) {
		partial.content, partial.reasoning = content, reasoning
		now := e.now()
		if !last.IsZero() && now.Sub(last) < e.interval {
			return
		}
		last = now

		e.mu.Lock()
		if i := messageIndex(e.snap.Messages, messageID); i >= 0 {
			e.snap.Messages[i].Content = world.Text(content)
			e.snap.Messages[i].Reasoning = reasoning
		}
		e.mu.Unlock()

		e.notify(func(o Observer) { o.OnProgress(messageID, content, reasoning) })
	}
}

func messageIndex(msgs []world.Message, id string) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}
