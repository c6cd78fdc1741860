package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ruleforge/dungeon/internal/engine"
	"github.com/ruleforge/dungeon/internal/storage"
	"github.com/ruleforge/dungeon/pkg/state"
	"github.com/ruleforge/dungeon/pkg/transcript"
)

const (
	AgentName       = "GM"
	PlaceHolderText = "What do you do?"
)

// turnTimeout bounds one narrator call from the console.
const turnTimeout = 90 * time.Second

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

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

	blockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	eng      *engine.Engine
	gs       *state.GameState
	recorder *transcript.Recorder

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model

	lines   []string // rendered chat lines, unwrapped
	ready   bool
	width   int
	height  int
	loading bool
	err     error
	status  string
}

type turnMsg struct {
	result *engine.TurnResult
	err    error
}

func NewConsoleUI(eng *engine.Engine, gs *state.GameState, recorder *transcript.Recorder) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(24, 20)

	ui := ConsoleUI{
		eng:          eng,
		gs:           gs,
		recorder:     recorder,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}

	rs := eng.Rules()
	ui.lines = append(ui.lines,
		titleStyle.Render("AI DUNGEON — "+rs.Quest.Name),
		"",
		narratorStyle.Render(rs.Quest.Intro),
		"",
		promptStyle.Render("Type 'help' for commands, 'quit' to exit."),
		"",
	)
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, taCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.gs.ID.String()); err == nil {
				m.status = "Session ID copied to clipboard."
			} else {
				m.status = "Clipboard unavailable."
			}
			m.refresh()
		case tea.KeyEnter:
			if m.loading {
				break
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				break
			}
			return m.handleInput(input)
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.appendLine(errorStyle.Render("✗ " + msg.err.Error()))
		} else {
			m.appendTurn(msg.result)
		}
		m.refresh()
	}

	return m, tea.Batch(taCmd, vpCmd)
}

// handleInput routes built-in commands locally; everything else becomes
// a game turn.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	m.status = ""
	m.appendLine(speakerStyle.Render("You: ") + userStyle.Render(input))

	switch strings.ToLower(input) {
	case "quit", "/quit":
		return m, tea.Quit

	case "help", "/help":
		m.appendLine(promptStyle.Render("Available commands:"))
		for _, cmd := range m.eng.Rules().Commands {
			m.appendLine(promptStyle.Render("  - " + cmd))
		}
		m.appendLine(promptStyle.Render("  - inventory | save | load | quit"))
		m.refresh()
		return m, nil

	case "inventory", "/inventory":
		m.appendLine(narratorStyle.Render(m.gs.DescribeInventory(m.eng.Rules().InventoryLimit)))
		m.refresh()
		return m, nil

	case "save", "/save":
		if err := storage.SaveSnapshot(SaveFile, m.gs); err != nil {
			m.appendLine(errorStyle.Render("✗ " + err.Error()))
		} else {
			m.appendLine(promptStyle.Render("✓ Game saved to " + SaveFile))
		}
		m.refresh()
		return m, nil

	case "load", "/load":
		loaded, err := storage.LoadSnapshot(SaveFile)
		if err != nil {
			m.appendLine(errorStyle.Render("✗ " + err.Error()))
		} else {
			*m.gs = *loaded
			m.appendLine(promptStyle.Render("✓ Game loaded from " + SaveFile))
		}
		m.refresh()
		return m, nil
	}

	if m.gs.IsEnded() {
		m.appendLine(promptStyle.Render("The session has ended. Type 'quit' to exit."))
		m.refresh()
		return m, nil
	}

	m.loading = true
	m.refresh()
	eng, gs := m.eng, m.gs
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		result, err := eng.RunTurn(ctx, gs, input)
		return turnMsg{result: result, err: err}
	}
}

// appendTurn renders one turn result into the chat panel.
func (m *ConsoleUI) appendTurn(result *engine.TurnResult) {
	if result.Rejected != "" {
		m.appendLine(errorStyle.Render("✗ " + result.Rejected + ". Type 'help' for valid commands."))
		return
	}

	m.appendLine(speakerStyle.Render(AgentName+": ") + narratorStyle.Render(result.Narration))
	for _, res := range result.Results {
		if !res.Applied {
			m.appendLine(blockedStyle.Render(fmt.Sprintf("  [RULE BLOCKED: %s — %s]", res.Atom.String(), res.Reason)))
		}
	}
	if result.ParseErr != "" {
		m.appendLine(blockedStyle.Render("  [narrator response was unusable this turn]"))
	}

	switch result.Outcome {
	case state.OutcomeWon:
		m.appendLine("")
		m.appendLine(titleStyle.Render("🎉 VICTORY! You have completed the quest!"))
	case state.OutcomeLost:
		m.appendLine("")
		m.appendLine(titleStyle.Render("💀 GAME OVER!"))
	}
}

func (m *ConsoleUI) appendLine(line string) {
	m.lines = append(m.lines, line, "")
}

// refresh re-renders both panels.
func (m *ConsoleUI) refresh() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	for _, line := range m.lines {
		content.WriteString(wordwrap.String(line, chatWidth))
		content.WriteString("\n")
	}
	if m.loading {
		content.WriteString(loadingStyle.Render("The GM is thinking..."))
		content.WriteString("\n")
	}
	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()

	m.metaViewport.SetContent(m.writeMetadata())
}

func (m *ConsoleUI) writeMetadata() string {
	rs := m.eng.Rules()
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Location:\n")
	content.WriteString(titleCaser.String(m.gs.Location) + "\n\n")

	fmt.Fprintf(&content, "HP: %d\n", m.gs.HP)
	fmt.Fprintf(&content, "Turn: %d/%d\n", m.gs.Turn, rs.EndConditions.MaxTurns)
	fmt.Fprintf(&content, "Items: %d/%d\n\n", len(m.gs.Inventory), rs.InventoryLimit)

	if flags := m.gs.ActiveFlags(); len(flags) > 0 {
		content.WriteString("Flags:\n")
		for _, flag := range flags {
			content.WriteString("• " + flag + "\n")
		}
		content.WriteString("\n")
	}

	if m.status != "" {
		content.WriteString(m.status + "\n\n")
	}

	content.WriteString("Keys:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+Y: Copy ID\n")
	content.WriteString("• Enter: Send\n")

	return content.String()
}

func (m *ConsoleUI) resize() {
	metaWidth := 26
	chatWidth := m.width - metaWidth
	if chatWidth < 30 {
		chatWidth = m.width
		metaWidth = 0
	}

	inputHeight := 5
	panelHeight := m.height - inputHeight

	m.chatViewport.Width = chatWidth
	m.chatViewport.Height = panelHeight
	m.metaViewport.Width = metaWidth
	m.metaViewport.Height = panelHeight
	m.textarea.SetWidth(m.width - 4)

	m.refresh()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	chat := chatPanelStyle.Render(m.chatViewport.View())
	meta := metaPanelStyle.Render(m.metaViewport.View())
	panels := lipgloss.JoinHorizontal(lipgloss.Top, chat, meta)

	separator := separatorStyle.Render(strings.Repeat("─", max(m.width-2, 0)))
	return panels + "\n" + separator + "\n" + m.textarea.View()
}
