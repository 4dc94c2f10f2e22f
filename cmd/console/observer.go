package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

type snapshotMsg struct {
	snapshot *world.Snapshot
}

type progressMsg struct {
	messageID string
	content   string
	reasoning string
}

type turnFinishedMsg struct {
	result engine.TurnResult
}

// programObserver forwards engine notifications to the UI. The engine
// notifies synchronously, sometimes from inside Update, so messages are
// queued and delivered by a separate goroutine instead of calling
// Program.Send directly.
type programObserver struct {
	msgs chan tea.Msg
}

func newProgramObserver() *programObserver {
	return &programObserver{msgs: make(chan tea.Msg, 256)}
}

// run delivers queued messages for the life of the process. Send returns
// immediately once the program has exited.
func (o *programObserver) run(send func(tea.Msg)) {
	for msg := range o.msgs {
		send(msg)
	}
}

func (o *programObserver) push(msg tea.Msg, droppable bool) {
	if !droppable {
		o.msgs <- msg
		return
	}
	select {
	case o.msgs <- msg:
	default:
		// A later snapshot supersedes a dropped progress update.
	}
}

func (o *programObserver) OnSnapshot(s *world.Snapshot) {
	o.push(snapshotMsg{snapshot: s}, false)
}

func (o *programObserver) OnProgress(messageID, content, reasoning string) {
	o.push(progressMsg{messageID: messageID, content: content, reasoning: reasoning}, true)
}

func (o *programObserver) OnToolResult(engine.ToolOutcome) {}

func (o *programObserver) OnTurnFinished(result engine.TurnResult) {
	o.push(turnFinishedMsg{result: result}, false)
}
