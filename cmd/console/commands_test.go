package main

import (
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		isCmd   bool
		want    commandType
		panel   world.Panel
		wantArg string
	}{
		{input: "I open the door.", isCmd: false},
		{input: "/help", isCmd: true, want: cmdHelp},
		{input: "  /MAP ", isCmd: true, want: cmdPanel, panel: world.PanelMap},
		{input: "/i", isCmd: true, want: cmdPanel, panel: world.PanelInventory},
		{input: "/panel memory", isCmd: true, want: cmdPanel, panel: world.PanelMemory},
		{input: "/panel attic", isCmd: true, want: cmdUnknown, wantArg: "/panel attic"},
		{input: "/close", isCmd: true, want: cmdClose},
		{input: "/prompt A drowned city.", isCmd: true, want: cmdPrompt, wantArg: "A drowned city."},
		{input: "/prompt reset", isCmd: true, want: cmdPromptReset},
		{input: "/prompt", isCmd: true, want: cmdPanel, panel: world.PanelSettings},
		{input: "/reset", isCmd: true, want: cmdReset},
		{input: "/copy", isCmd: true, want: cmdCopy},
		{input: "/exit", isCmd: true, want: cmdQuit},
		{input: "/dance", isCmd: true, want: cmdUnknown, wantArg: "/dance"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, ok := parseCommand(tt.input)
			if ok != tt.isCmd {
				t.Fatalf("parseCommand(%q) ok = %v, want %v", tt.input, ok, tt.isCmd)
			}
			if !ok {
				return
			}
			if cmd.Type != tt.want {
				t.Errorf("Expected type %q, got %q", tt.want, cmd.Type)
			}
			if cmd.Panel != tt.panel {
				t.Errorf("Expected panel %q, got %q", tt.panel, cmd.Panel)
			}
			if cmd.Arg != tt.wantArg {
				t.Errorf("Expected arg %q, got %q", tt.wantArg, cmd.Arg)
			}
		})
	}
}
