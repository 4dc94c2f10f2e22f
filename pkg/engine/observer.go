package engine

import (
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// TurnState is the orchestrator's position in the turn lifecycle.
type TurnState string

const (
	StateIdle               TurnState = "idle"
	StateAwaitingCompletion TurnState = "awaiting_completion"
	StateDispatchingTools   TurnState = "dispatching_tools"
	StateDone               TurnState = "done"
	StateFailed             TurnState = "failed"
)

// Running reports whether a turn is in flight.
func (s TurnState) Running() bool {
	return s == StateAwaitingCompletion || s == StateDispatchingTools
}

// ToolOutcome records one dispatched tool call and what it produced.
type ToolOutcome struct {
	Call    world.ToolCall `json:"call"`
	Result  string         `json:"result"`
	Applied bool           `json:"applied"`
}

// TurnResult summarizes a finished turn.
type TurnResult struct {
	Rounds     int            `json:"rounds"`
	Tools      []ToolOutcome  `json:"tools,omitempty"`
	Narration  string         `json:"narration"`
	CapReached bool           `json:"cap_reached,omitempty"`
	Error      string         `json:"error,omitempty"`
	Message    *world.Message `json:"-"`
}

// Observer receives published state. Every snapshot passed to an observer
// is a private copy. Calls are made synchronously from the goroutine that
// caused the change, so implementations should return quickly.
type Observer interface {
	// OnSnapshot is called whenever the canonical snapshot is replaced.
	OnSnapshot(snap *world.Snapshot)
	// OnProgress is called, throttled, while an assistant message streams.
	OnProgress(messageID, content, reasoning string)
	// OnToolResult is called after each tool call is dispatched.
	OnToolResult(outcome ToolOutcome)
	// OnTurnFinished is called once per submitted turn.
	OnTurnFinished(result TurnResult)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the callbacks you need.
type NopObserver struct{}

func (NopObserver) OnSnapshot(*world.Snapshot)        {}
func (NopObserver) OnProgress(string, string, string) {}
func (NopObserver) OnToolResult(ToolOutcome)          {}
func (NopObserver) OnTurnFinished(TurnResult)         {}
