package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine     *engine.Engine
	model      string
	turnTime   time.Duration
	snapshot   *world.Snapshot
	notice     string
	copyToClip func(string) error

	chatViewport viewport.Model
	sideViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	showQuitModal bool
	progressTick  int
}

type turnErrMsg struct {
	err error
}

type progressTickMsg struct{}

func NewConsoleUI(e *engine.Engine, model string, turnTimeout time.Duration) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = dimStyle.Render(":: ")
	ta.CharLimit = 2000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		engine:       e,
		model:        model,
		turnTime:     turnTimeout,
		snapshot:     e.Snapshot(),
		copyToClip:   clipboard.WriteAll,
		textarea:     ta,
		chatViewport: chatVp,
		sideViewport: viewport.New(30, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) loading() bool {
	return m.snapshot != nil && m.snapshot.Loading
}

// layout returns the chat and side column widths.
func (m ConsoleUI) layout() (int, int) {
	chatWidth := int(float64(m.width)*0.65) - 2
	return chatWidth, m.width - chatWidth - 2
}

func (m *ConsoleUI) resize() {
	chatWidth, sideWidth := m.layout()
	m.chatViewport.Width = chatWidth - 3
	m.chatViewport.Height = m.height - 8
	m.sideViewport.Width = sideWidth - 4
	m.sideViewport.Height = m.height - 2
	m.textarea.SetWidth(chatWidth - 4)
}

// refresh re-renders both columns from the current snapshot.
func (m *ConsoleUI) refresh() {
	if !m.ready || m.snapshot == nil {
		return
	}
	content := renderChat(m.snapshot, m.chatViewport.Width-3)
	if m.loading() {
		content += m.renderProgressBar()
	}
	if m.notice != "" {
		content += dimStyle.Render(m.notice) + "\n"
	}
	m.chatViewport.SetContent(content)
	m.chatViewport.GotoBottom()
	m.sideViewport.SetContent(renderPanel(m.snapshot, m.model, m.sideViewport.Width))
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if cmd, ok := parseCommand(input); ok {
				m.textarea.Reset()
				return m.handleCommand(cmd)
			}
			if m.loading() {
				return m, nil
			}
			m.textarea.Reset()
			m.notice = ""
			m.progressTick = 0
			return m, tea.Batch(m.submit(input), progressTick())
		}

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.refresh()
		return m, nil

	case progressMsg:
		for i := len(m.snapshot.Messages) - 1; i >= 0; i-- {
			if m.snapshot.Messages[i].ID == msg.messageID {
				m.snapshot.Messages[i].Content = world.Text(msg.content)
				m.snapshot.Messages[i].Reasoning = msg.reasoning
				break
			}
		}
		m.refresh()
		return m, nil

	case turnFinishedMsg:
		if msg.result.CapReached {
			m.notice = "The narrator ran out of steps this turn."
		}
		m.refresh()
		return m, nil

	case turnErrMsg:
		// Turn failures are already recorded in the snapshot.
		if errors.Is(msg.err, engine.ErrTurnInProgress) {
			m.notice = "Wait for the narrator to finish."
			m.refresh()
		}
		return m, nil

	case progressTickMsg:
		if m.loading() {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) submit(input string) tea.Cmd {
	e, timeout := m.engine, m.turnTime
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if _, err := e.Submit(ctx, input); err != nil {
			return turnErrMsg{err: err}
		}
		return nil
	}
}

func (m ConsoleUI) handleCommand(cmd command) (tea.Model, tea.Cmd) {
	m.notice = ""
	var err error

	switch cmd.Type {
	case cmdHelp:
		m.notice = helpText
	case cmdPanel:
		m.engine.TogglePanel(cmd.Panel)
	case cmdClose:
		m.engine.CloseAllPanels()
	case cmdPrompt:
		err = m.engine.UpdateWorldPrompt(cmd.Arg)
		if err == nil {
			m.notice = "World prompt updated."
		}
	case cmdPromptReset:
		err = m.engine.ResetWorldPrompt()
		if err == nil {
			m.notice = "World prompt restored."
		}
	case cmdReset:
		err = m.engine.Reset()
	case cmdCopy:
		text := m.snapshot.LastAssistantText()
		if text == "" {
			m.notice = "Nothing to copy yet."
		} else if err = m.copyToClip(text); err == nil {
			m.notice = "Copied the last narration."
		}
	case cmdQuit:
		return m, tea.Quit
	default:
		m.notice = "Unknown command " + cmd.Arg + ". Try /help."
	}

	if errors.Is(err, engine.ErrTurnInProgress) {
		m.notice = "That has to wait until the narrator finishes."
	} else if err != nil {
		m.notice = "Error: " + err.Error()
	}
	// Engine changes arrive as snapshotMsg; the notice shows now.
	m.refresh()
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the story?")
	content.WriteString("\n\n")
	content.WriteString(dimStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	chatWidth, sideWidth := m.layout()
	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			dimStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)
	sidePanel := sidePanelStyle.Width(sideWidth).Height(m.height - 2).Render(m.sideViewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, sidePanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := min(max(m.chatViewport.Width-6, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return dimStyle.Render(bar.String()) + "\n"
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
