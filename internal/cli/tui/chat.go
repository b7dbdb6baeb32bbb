package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/cli/ui"
	"github.com/chazo1994/Creatory/internal/conversation"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/stream"
)

// UI configuration constants
const (
	defaultWindowWidth   = 120
	defaultWindowHeight  = 40
	inputCharLimit       = 4000
	inputHeightReserved  = 2
	statusHeightReserved = 3
	paneBorderWidth      = 2
	minContentHeight     = 8
	requestTimeout       = 2 * time.Minute
)

// Style definitions
var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("86"))
)

// ChatProgram encapsulates the dual-thread chat TUI program
type ChatProgram struct {
	model    chatModel
	consumer *stream.Consumer
}

// NewChatProgram creates a chat program over coord. Chat runs are followed
// through consumer; token supplies the credential for it.
func NewChatProgram(coord *conversation.Coordinator, consumer *stream.Consumer, token func() string) *ChatProgram {
	return &ChatProgram{
		model:    initialModel(coord, consumer, token),
		consumer: consumer,
	}
}

// Run starts the chat TUI program and closes the stream subscription on exit
func (p *ChatProgram) Run() error {
	defer p.consumer.Close()
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// pane is one thread's timeline
type pane struct {
	kind     types.ThreadKind
	title    string
	view     viewport.Model
	msgs     []types.Message
	selected int // highlighted message, -1 for none
	loading  bool
	err      error
}

// chatModel is the Bubble Tea model of the dual-thread chat
type chatModel struct {
	// Dependencies
	coord    *conversation.Coordinator
	consumer *stream.Consumer
	token    func() string

	// UI components
	input textinput.Model
	panes [2]*pane
	focus int

	sending bool
	status  string
	err     error

	// Window dimensions
	width  int
	height int
}

const (
	mainPane  = 0
	quickPane = 1
)

// initialModel creates the initial chat model
func initialModel(coord *conversation.Coordinator, consumer *stream.Consumer, token func() string) chatModel {
	input := textinput.New()
	input.Placeholder = ""
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	m := chatModel{
		coord:    coord,
		consumer: consumer,
		token:    token,
		input:    input,
		panes: [2]*pane{
			{kind: types.ThreadMain, title: "Main", view: viewport.New(0, 0), selected: -1},
			{kind: types.ThreadQuick, title: "Quick", view: viewport.New(0, 0), selected: -1},
		},
		width:  defaultWindowWidth,
		height: defaultWindowHeight,
	}
	m.resize(defaultWindowWidth, defaultWindowHeight)
	return m
}

// Message type definitions
type (
	timelineMsg struct {
		kind types.ThreadKind
		msgs []types.Message
		err  error
	}
	sentMsg struct {
		kind   types.ThreadKind
		result *types.ChatResult
		err    error
	}
	injectedMsg    struct{ err error }
	streamEventMsg struct{}
)

// Init loads both timelines (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadTimeline(types.ThreadMain),
		m.loadTimeline(types.ThreadQuick),
		waitForStream(m.consumer),
	)
}

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKeyPress(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case timelineMsg:
		p := m.pane(msg.kind)
		p.loading = false
		p.err = msg.err
		if msg.err == nil {
			p.msgs = msg.msgs
			if p.selected >= len(p.msgs) {
				p.selected = -1
			}
		}
		m.refreshPane(p)

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.status = fmt.Sprintf("Run %s %s", msg.result.AgentRun.ID, msg.result.AgentRun.Status)
		if m.consumer != nil {
			m.consumer.Subscribe(m.token(), msg.result.AgentRun.ID)
		}
		cmds = append(cmds, m.loadTimeline(msg.kind))

	case injectedMsg:
		m.status = conversation.InjectStatus(msg.err)
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		cmds = append(cmds, m.loadTimeline(types.ThreadMain))

	case streamEventMsg:
		cmds = append(cmds, waitForStream(m.consumer))
	}

	// the input keeps typing while a turn is in flight; Enter is ignored then
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit

	case "tab":
		m.focus = 1 - m.focus
		return nil

	case "enter":
		if m.sending {
			return nil
		}
		kind := m.panes[m.focus].kind
		text := m.input.Value()
		if !m.coord.CanSend(kind, text) {
			return nil
		}
		m.input.Reset()
		m.sending = true
		m.status = fmt.Sprintf("Sending on %s thread...", kind)
		return m.send(kind, text)

	case "ctrl+up":
		m.moveSelection(-1)

	case "ctrl+down":
		m.moveSelection(1)

	case "ctrl+g":
		p := m.panes[quickPane]
		if p.selected < 0 || p.selected >= len(p.msgs) {
			m.status = "Select a quick-thread answer with ctrl+up/ctrl+down first."
			return nil
		}
		target := p.msgs[p.selected]
		if !m.coord.CanInject(target) {
			m.status = "Only assistant answers can be injected."
			return nil
		}
		m.status = "Injecting..."
		return m.inject(target)

	case "up":
		m.panes[m.focus].view.LineUp(1)

	case "down":
		m.panes[m.focus].view.LineDown(1)

	case "pgup":
		m.panes[m.focus].view.ViewUp()

	case "pgdown":
		m.panes[m.focus].view.ViewDown()
	}
	return nil
}

// moveSelection walks the quick thread's assistant answers
func (m *chatModel) moveSelection(step int) {
	p := m.panes[quickPane]
	if len(p.msgs) == 0 {
		return
	}

	i := p.selected
	if i < 0 {
		i = len(p.msgs)
	}
	for {
		i += step
		if i < 0 || i >= len(p.msgs) {
			return
		}
		if p.msgs[i].Role == types.RoleAssistant {
			p.selected = i
			m.refreshPane(p)
			return
		}
	}
}

func (m *chatModel) pane(kind types.ThreadKind) *pane {
	if kind == types.ThreadQuick {
		return m.panes[quickPane]
	}
	return m.panes[mainPane]
}

func (m chatModel) loadTimeline(kind types.ThreadKind) tea.Cmd {
	m.pane(kind).loading = true
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msgs, err := coord.Timeline(ctx, kind)
		return timelineMsg{kind: kind, msgs: msgs, err: err}
	}
}

func (m chatModel) send(kind types.ThreadKind, prompt string) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := coord.Send(ctx, kind, prompt)
		return sentMsg{kind: kind, result: result, err: err}
	}
}

func (m chatModel) inject(msg types.Message) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := coord.Inject(ctx, msg)
		return injectedMsg{err: err}
	}
}

// waitForStream waits for the next change of the stream consumer
func waitForStream(consumer *stream.Consumer) tea.Cmd {
	if consumer == nil {
		return nil
	}
	return func() tea.Msg {
		<-consumer.Changes()
		return streamEventMsg{}
	}
}

// resize splits the window into two side-by-side panes
func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - inputHeightReserved - statusHeightReserved - paneBorderWidth
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}
	paneWidth := width/2 - paneBorderWidth
	if paneWidth < 10 {
		paneWidth = 10
	}

	for _, p := range m.panes {
		p.view.Width = paneWidth
		p.view.Height = contentHeight
		m.refreshPane(p)
	}
	m.input.Width = width - 3
}

// refreshPane re-renders a pane's timeline
func (m *chatModel) refreshPane(p *pane) {
	var display string
	switch {
	case p.err != nil:
		display = errorStyle.Render(domain.UserMessage(p.err))
	case p.loading && len(p.msgs) == 0:
		display = dimStyle.Render("Loading...")
	default:
		display = ui.RenderTimeline(p.msgs, p.selected)
	}

	p.view.SetContent(wrapText(display, p.view.Width))
	if p.selected < 0 {
		p.view.GotoBottom()
	}
}

// wrapText applies auto-wrapping to text, correctly handling wide character widths
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		// Keep empty lines as-is
		if strings.TrimSpace(line) == "" {
			continue
		}

		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text, correctly handling wide character widths
func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		// If adding this character exceeds width, wrap first
		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	// Add final line
	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	rendered := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		style := paneStyle
		title := dimStyle.Render(p.title)
		if i == m.focus {
			style = focusedPaneStyle
			title = accentStyle.Render(p.title)
		}
		rendered = append(rendered, style.Render(lipgloss.JoinVertical(lipgloss.Left, title, p.view.View())))
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	// Top status bar
	var st stream.State
	if m.consumer != nil {
		st = m.consumer.State()
	}
	status := ui.RenderStreamStatus(st)
	if m.status != "" {
		status += dimStyle.Render(" • ") + m.status
	}
	if m.err != nil {
		status += " " + errorStyle.Render(domain.UserMessage(m.err))
	}

	// Input area
	var inputView string
	if m.sending {
		inputView = dimStyle.Render("> ") + dimStyle.Render("Waiting for the director...")
	} else {
		inputView = promptStyle.Render(fmt.Sprintf("%s > ", m.panes[m.focus].kind)) + m.input.View()
	}

	help := dimStyle.Render("Enter send • Tab switch thread • ctrl+↑↓ pick quick answer • ctrl+g inject • Esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, status, panes, inputView, help)
}
