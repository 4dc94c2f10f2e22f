package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do?"
)

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(1).
			PaddingRight(2).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

// renderChat formats the conversation for a chat column of the given width.
func renderChat(s *world.Snapshot, width int) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("CHRONICLE") + "\n\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, msg := range s.Messages {
		switch msg.Role {
		case world.RoleUser:
			b.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Text(), width-5) + "\n\n")
		case world.RoleAssistant:
			if msg.Reasoning != "" && msg.Text() == "" && s.Loading {
				b.WriteString(dimStyle.Render(wordwrap.String("(thinking) "+lastLines(msg.Reasoning, 3), width)) + "\n\n")
			}
			if text := msg.Text(); text != "" {
				b.WriteString(formatNarratorResponse(text, width) + "\n\n")
			}
		case world.RoleTool:
			b.WriteString(dimStyle.Render(wordwrap.String("· "+msg.Text(), width)) + "\n\n")
		}
	}

	if s.Error != "" {
		b.WriteString(errorStyle.Render(wordwrap.String("Error: "+s.Error, width)) + "\n\n")
	}
	return b.String()
}

// lastLines keeps the tail of long reasoning so the chat does not scroll away.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func formatNarratorResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		if len(strings.Fields(response[:idx])) <= 2 {
			hasPrefix = true
		}
	}

	wrapWidth := width
	if !hasPrefix {
		wrapWidth = width - len(AgentName+": ")
	}

	lines := strings.Split(wordwrap.String(response, wrapWidth), "\n")
	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 && len(strings.Fields(trimmed[:idx])) <= 2 {
			formatted = append(formatted, speakerStyle.Render(trimmed[:idx+1])+trimmed[idx+1:])
			continue
		}
		formatted = append(formatted, line)
	}

	result := strings.Join(formatted, "\n")
	if !hasPrefix {
		result = narratorStyle.Render(AgentName+": ") + result
	}
	return result
}

// renderPanel renders the side panel for the snapshot's active panel, or a
// short status summary when none is open.
func renderPanel(s *world.Snapshot, model string, width int) string {
	switch s.ActivePanel {
	case world.PanelSettings:
		return renderSettings(s, model, width)
	case world.PanelMemory:
		return renderMemories(s, width)
	case world.PanelInventory:
		return renderInventory(s, width)
	case world.PanelMap:
		return renderMap(s, width)
	default:
		return renderStatus(s, width)
	}
}

func renderStatus(s *world.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("STATUS") + "\n\n")
	b.WriteString("Location:\n")
	if loc, zone := s.CurrentLocation(), s.CurrentZone(); loc != nil && zone != nil {
		b.WriteString(wordwrap.String(fmt.Sprintf("%s, %s", zone.Name, loc.Name), width) + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("Somewhere unknown") + "\n\n")
	}
	b.WriteString("Purse:\n" + s.Currency.String() + "\n\n")
	fmt.Fprintf(&b, "Messages: %d\n\n", len(s.Messages))
	if s.Loading {
		b.WriteString(loadingStyle.Render("The narrator is writing...") + "\n\n")
	}
	b.WriteString(dimStyle.Render("/help for commands"))
	return b.String()
}

func renderSettings(s *world.Snapshot, model string, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SETTINGS") + "\n\n")
	b.WriteString("Model:\n" + model + "\n\n")
	b.WriteString("World prompt:\n")
	b.WriteString(wordwrap.String(s.WorldPrompt, width) + "\n\n")
	b.WriteString(dimStyle.Render(wordwrap.String("/prompt <text> to replace, /prompt reset to restore", width)))
	return b.String()
}

func renderMemories(s *world.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MEMORY") + "\n\n")
	if len(s.Memories) == 0 {
		b.WriteString(dimStyle.Render("Nothing remembered yet.") + "\n")
		return b.String()
	}
	for _, cat := range world.Categories {
		var items []world.MemoryItem
		for _, m := range s.Memories {
			if m.Category == cat {
				items = append(items, m)
			}
		}
		if len(items) == 0 {
			continue
		}
		b.WriteString(speakerStyle.Render(string(cat)) + "\n")
		for _, m := range items {
			name := "• " + m.Name
			if !m.Enabled {
				name = dimStyle.Render(name + " (off)")
			}
			b.WriteString(name + "\n")
			if m.Description != "" {
				b.WriteString(dimStyle.Render(wordwrap.String(m.Description, width)) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderInventory(s *world.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("INVENTORY") + "\n\n")
	b.WriteString("Purse: " + s.Currency.String() + "\n\n")

	b.WriteString(speakerStyle.Render("Equipped") + "\n")
	equipped := s.Equipped()
	if len(equipped) == 0 {
		b.WriteString(dimStyle.Render("nothing") + "\n")
	}
	for _, item := range equipped {
		b.WriteString(wordwrap.String(fmt.Sprintf("• %s (%s)", item.Name, item.Type), width) + "\n")
	}

	b.WriteString("\n" + speakerStyle.Render("Backpack") + "\n")
	backpack := s.Backpack()
	if len(backpack) == 0 {
		b.WriteString(dimStyle.Render("empty") + "\n")
	}
	for _, item := range backpack {
		b.WriteString(wordwrap.String(fmt.Sprintf("• %s x%d", item.Name, item.Quantity), width) + "\n")
	}
	return b.String()
}

// renderMap shows the current location through the fog of war: only
// explored zones are named.
func renderMap(s *world.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MAP") + "\n\n")
	loc := s.CurrentLocation()
	if loc == nil {
		b.WriteString(dimStyle.Render("You are somewhere uncharted.") + "\n")
		return b.String()
	}
	b.WriteString(speakerStyle.Render(loc.Name) + "\n\n")
	for _, z := range loc.Zones {
		if !z.Explored {
			b.WriteString(dimStyle.Render("  ???") + "\n")
			continue
		}
		marker := "  "
		if z.ID == s.CurrentZoneID {
			marker = "▶ "
		}
		b.WriteString(marker + z.Name + "\n")
		exits := make([]string, 0, len(z.Connections))
		for _, id := range z.Connections {
			switch target := loc.Zone(id); {
			case target == nil:
				exits = append(exits, world.UnknownZoneName)
			case target.Explored:
				exits = append(exits, target.Name)
			default:
				exits = append(exits, "???")
			}
		}
		if len(exits) > 0 {
			b.WriteString(dimStyle.Render(wordwrap.String("    → "+strings.Join(exits, ", "), width)) + "\n")
		}
	}
	return b.String()
}
