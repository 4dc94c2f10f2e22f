package main

import (
	"strings"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

type commandType string

const (
	cmdHelp        commandType = "help"
	cmdPanel       commandType = "panel"
	cmdClose       commandType = "close"
	cmdPrompt      commandType = "prompt"
	cmdPromptReset commandType = "prompt-reset"
	cmdReset       commandType = "reset"
	cmdCopy        commandType = "copy"
	cmdQuit        commandType = "quit"
	cmdUnknown     commandType = "unknown"
)

// command is a parsed slash command.
type command struct {
	Type  commandType
	Panel world.Panel
	Arg   string
}

// panelShortcuts maps short names to panels, so "/inv" and "/i" both work.
var panelShortcuts = map[string]world.Panel{
	"settings":  world.PanelSettings,
	"s":         world.PanelSettings,
	"memory":    world.PanelMemory,
	"memories":  world.PanelMemory,
	"m":         world.PanelMemory,
	"inventory": world.PanelInventory,
	"inv":       world.PanelInventory,
	"i":         world.PanelInventory,
	"map":       world.PanelMap,
}

// parseCommand parses input starting with "/". Anything else is not a command.
func parseCommand(input string) (command, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(trimmed, "/"), " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	switch name {
	case "help", "h", "?":
		return command{Type: cmdHelp}, true
	case "panel":
		p, ok := panelShortcuts[strings.ToLower(arg)]
		if !ok {
			return command{Type: cmdUnknown, Arg: trimmed}, true
		}
		return command{Type: cmdPanel, Panel: p}, true
	case "close":
		return command{Type: cmdClose}, true
	case "prompt":
		if strings.EqualFold(arg, "reset") {
			return command{Type: cmdPromptReset}, true
		}
		if arg == "" {
			return command{Type: cmdPanel, Panel: world.PanelSettings}, true
		}
		return command{Type: cmdPrompt, Arg: arg}, true
	case "reset":
		return command{Type: cmdReset}, true
	case "copy":
		return command{Type: cmdCopy}, true
	case "quit", "exit", "q":
		return command{Type: cmdQuit}, true
	}
	if p, ok := panelShortcuts[name]; ok {
		return command{Type: cmdPanel, Panel: p}, true
	}
	return command{Type: cmdUnknown, Arg: trimmed}, true
}

const helpText = `Commands:
  /settings, /memory, /inventory, /map   toggle a side panel
  /panel <name>                          same as above
  /close                                 close the side panel
  /prompt <text>                         replace the world prompt
  /prompt reset                          restore the default world prompt
  /reset                                 start the story over
  /copy                                  copy the last narration
  /quit                                  leave

Anything else is sent to the narrator.`
