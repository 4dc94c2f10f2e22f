package tools

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// Result is the outcome of dispatching one tool call.
// Snapshot is the caller's snapshot, unchanged, when Applied is false.
type Result struct {
	Text     string
	Snapshot *world.Snapshot
	Applied  bool
}

// Dispatcher applies model-requested tool calls to world snapshots.
// It never mutates the snapshot it is given.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{logger: logger}
}

// Dispatch runs a single tool call against snap and returns the resulting
// snapshot with a human-readable result for the model. Argument problems
// are reported in the result text, never as a Go error.
func (d *Dispatcher) Dispatch(call world.ToolCall, snap *world.Snapshot) Result {
	name := call.Function.Name
	args, err := ParseArgs(name, call.Function.Arguments)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) && argErr.Reason == ErrUnknownTool {
			d.logger.Warn("Unknown tool requested", "tool", name, "tool_call_id", call.ID)
			return Result{Text: fmt.Sprintf("Error: Unknown function called: %s", name), Snapshot: snap}
		}
		d.logger.Warn("Failed to parse tool arguments",
			"tool", name,
			"tool_call_id", call.ID,
			"error", err)
		return Result{Text: "Error: Failed to parse tool arguments.", Snapshot: snap}
	}

	next := snap.Clone()
	text, ok := args.apply(next)
	if !ok {
		d.logger.Debug("Tool call rejected", "tool", name, "result", text)
		return Result{Text: text, Snapshot: snap}
	}
	d.logger.Debug("Tool call applied", "tool", name, "result", text)
	return Result{Text: text, Snapshot: next, Applied: true}
}

// DispatchAll applies calls in order, threading the snapshot through each.
// Results are returned in call order.
func (d *Dispatcher) DispatchAll(calls []world.ToolCall, snap *world.Snapshot) ([]Result, *world.Snapshot) {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		res := d.Dispatch(call, snap)
		results = append(results, res)
		snap = res.Snapshot
	}
	return results, snap
}

func reject(format string, a ...any) (string, bool) {
	return fmt.Sprintf(format, a...), false
}
