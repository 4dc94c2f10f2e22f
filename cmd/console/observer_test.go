package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func TestProgramObserver_Order(t *testing.T) {
	o := newProgramObserver()
	var _ engine.Observer = o

	o.OnSnapshot(world.New("a"))
	o.OnProgress("m1", "Hel", "")
	o.OnTurnFinished(engine.TurnResult{Rounds: 1})

	got := []tea.Msg{<-o.msgs, <-o.msgs, <-o.msgs}
	if _, ok := got[0].(snapshotMsg); !ok {
		t.Errorf("Expected snapshotMsg first, got %T", got[0])
	}
	if p, ok := got[1].(progressMsg); !ok || p.content != "Hel" {
		t.Errorf("Expected progressMsg second, got %#v", got[1])
	}
	if f, ok := got[2].(turnFinishedMsg); !ok || f.result.Rounds != 1 {
		t.Errorf("Expected turnFinishedMsg third, got %#v", got[2])
	}
}

func TestProgramObserver_DropsProgressWhenFull(t *testing.T) {
	o := newProgramObserver()
	for i := 0; i < cap(o.msgs)+10; i++ {
		o.OnProgress("m1", "x", "")
	}
	if len(o.msgs) != cap(o.msgs) {
		t.Errorf("Expected a full queue, got %d of %d", len(o.msgs), cap(o.msgs))
	}
}
