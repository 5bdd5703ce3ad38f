package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/queue"
	"github.com/muesli/reflow/wordwrap"
)

const (
	PlaceHolderText = "phases to queue, e.g. new_round buy move"
	logLimit        = 50
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	streamClient *http.Client
	session      *arena.Session
	feed         viewport.Model
	metaViewport viewport.Model
	input        textinput.Model
	lines        []string
	ready        bool
	width        int
	height       int
	err          error

	eventChan chan SSEEvent
	cancel    context.CancelFunc
	ctx       context.Context

	// Quit confirmation state
	showQuitModal bool

	// Phases queued but not yet finished
	inFlight     int
	progressTick int
}

type sseEventMsg struct {
	event SSEEvent
}

type sseClosedMsg struct {
	err error
}

type sessionMsg struct {
	session *arena.Session
	err     error
}

type enqueuedMsg struct {
	phase string
	err   error
}

type logMsg struct {
	lines []string
	err   error
}

type progressTickMsg struct{}

var (
	feedPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(2).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	queuedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
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

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client, streamClient *http.Client, s *arena.Session) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Focus()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200
	ti.Width = 50

	feed := viewport.New(50, 20)
	feed.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ctx, cancel := context.WithCancel(context.Background())

	return ConsoleUI{
		config:       cfg,
		client:       client,
		streamClient: streamClient,
		session:      s,
		input:        ti,
		feed:         feed,
		metaViewport: metaVp,
		eventChan:    make(chan SSEEvent, 16),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.stream(), m.waitForEvent(), m.loadLog())
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
		m.feed, vpCmd = m.feed.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeFeed()
		m.metaViewport.SetContent(writeMetadata(m.session))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			return m, m.copySessionID()
		case tea.KeyEnter:
			input := strings.TrimSpace(m.input.Value())
			if input == "" {
				return m, nil
			}
			m.input.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			var cmds []tea.Cmd
			for _, phase := range strings.Fields(input) {
				if _, err := queue.ParsePhase(phase); err != nil {
					m.addLine(errorStyle.Render(err.Error()))
					continue
				}
				cmds = append(cmds, m.enqueue(phase))
			}
			m.writeFeed()
			if len(cmds) == 0 {
				return m, nil
			}
			// Phases are queued in the order typed
			enqueue := tea.Sequence(cmds...)
			if m.inFlight > 0 {
				m.inFlight += len(cmds)
				return m, enqueue
			}
			m.inFlight = len(cmds)
			m.progressTick = 0
			return m, tea.Batch(enqueue, progressTick())
		}

	case sseEventMsg:
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, m.waitForEvent())

	case sseClosedMsg:
		if msg.err != nil {
			m.addLine(errorStyle.Render("Event stream closed: " + msg.err.Error()))
		} else {
			m.addLine(promptStyle.Render("Event stream closed"))
		}
		m.writeFeed()

	case enqueuedMsg:
		if msg.err != nil {
			m.inFlight--
			m.addLine(errorStyle.Render(msg.err.Error()))
			m.writeFeed()
		}

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else if msg.session != nil {
			m.session = msg.session
			m.err = nil
		}
		m.metaViewport.SetContent(writeMetadata(m.session))

	case logMsg:
		if msg.err != nil {
			m.addLine(errorStyle.Render("Failed to load history: " + msg.err.Error()))
		} else {
			for _, line := range msg.lines {
				m.addLine(promptStyle.Render(line))
			}
		}
		m.writeFeed()

	case progressTickMsg:
		if m.inFlight > 0 {
			m.progressTick++
			m.writeFeed()
			return m, progressTick()
		}
	}

	m.input, tiCmd = m.input.Update(msg)
	m.feed, vpCmd = m.feed.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) resize() {
	feedWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - feedWidth - 6

	m.feed.Width = feedWidth - 2
	m.feed.Height = m.height - 6
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 3
	m.input.Width = feedWidth - 6
}

func (m *ConsoleUI) addLine(line string) {
	m.lines = append(m.lines, line)
}

// handleEvent renders one stream event into the feed
func (m *ConsoleUI) handleEvent(ev SSEEvent) tea.Cmd {
	var data map[string]any
	if ev.Event != nil {
		data = ev.Event.Data
	}
	phase, _ := data["phase"].(string)

	var cmd tea.Cmd
	switch events.EventType(ev.Type) {
	case events.EventTypePhaseQueued:
		m.addLine(queuedStyle.Render("queued ") + phase)
	case events.EventTypePhaseStarted:
		m.addLine(phaseStyle.Render("▶ ") + phase)
	case events.EventTypePhaseCompleted:
		m.inFlight = max(0, m.inFlight-1)
		result, _ := data["result"].(map[string]any)
		m.addLine(doneStyle.Render("✔ "+phase) + " " + formatResult(result))
		cmd = m.refreshSession()
	case events.EventTypePhaseFailed:
		m.inFlight = max(0, m.inFlight-1)
		errMsg, _ := data["error"].(string)
		m.addLine(errorStyle.Render("✖ "+phase+": ") + errMsg)
	case events.EventTypeLabels:
		m.addLine(promptStyle.Render("labels: ") + formatLabels(data["labels"]))
	case "connected":
		m.addLine(promptStyle.Render("Connected to event stream"))
	}
	m.writeFeed()
	return cmd
}

func formatResult(result map[string]any) string {
	if result == nil {
		return ""
	}
	var board []string
	if names, ok := result["board"].([]any); ok {
		for _, n := range names {
			board = append(board, fmt.Sprint(n))
		}
	}
	return fmt.Sprintf("round %v, level %v, health %v, board %v [%s]",
		result["round"], result["level"], result["health"], result["board_size"], strings.Join(board, ", "))
}

func formatLabels(raw any) string {
	list, ok := raw.([]any)
	if !ok {
		return ""
	}
	texts := make([]string, 0, len(list))
	for _, l := range list {
		if label, ok := l.(map[string]any); ok {
			texts = append(texts, fmt.Sprint(label["text"]))
		}
	}
	return strings.Join(texts, ", ")
}

func (m *ConsoleUI) writeFeed() {
	width := m.feed.Width - 4
	if width <= 0 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ARENA ENGINE") + "\n\n")
	content.WriteString("Type phases to queue them. /help lists commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, line := range m.lines {
		content.WriteString(wordwrap.String(line, width) + "\n")
	}

	if m.inFlight > 0 {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.feed.SetContent(content.String())
	m.feed.GotoBottom()
}

func writeMetadata(s *arena.Session) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")
	if s == nil {
		content.WriteString("None\n")
		return content.String()
	}

	content.WriteString("ID:\n")
	content.WriteString(s.ID.String()[:8] + "...\n\n")

	content.WriteString("Comp:\n")
	content.WriteString(s.Comp + "\n\n")

	content.WriteString(fmt.Sprintf("Round %d, Level %d\n", s.Round, s.Level))
	content.WriteString(fmt.Sprintf("Health %d/%d\n\n", s.Health, arena.MaxHealth))

	content.WriteString(fmt.Sprintf("Board (%d):\n", s.BoardSize()))
	for _, name := range s.BoardNames() {
		content.WriteString("• " + name + "\n")
	}
	for _, p := range s.BoardUnknown {
		content.WriteString(fmt.Sprintf("• %s (hex %d)\n", promptStyle.Render(p.Name), p.Hex))
	}

	content.WriteString("\nStill buying:\n")
	names := make([]string, 0, len(s.Targets))
	for name, n := range s.Targets {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		content.WriteString("Nothing\n")
	}
	for _, name := range names {
		content.WriteString(fmt.Sprintf("• %s ×%d\n", name, s.Targets[name]))
	}

	content.WriteString("\nFlags:\n")
	content.WriteString(fmt.Sprintf("• aggressive: %t\n", s.Flags.AggressiveRoll))
	content.WriteString(fmt.Sprintf("• headliner: %t\n", s.Flags.HeadlinerAcquired))
	content.WriteString(fmt.Sprintf("• reroll used: %t\n", s.Flags.AugmentRerollUsed))

	content.WriteString("\nCommands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+Y: Copy ID\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.addLine(titleStyle.Render("Help:"))
		m.addLine("• /phases - List the phases that can be queued")
		m.addLine("• /round - Queue a full round")
		m.addLine("• /refresh - Reload session state")
		m.addLine("• /log - Reload phase history")
		m.addLine("• /copy - Copy the session ID")
	case "/phases":
		phases := make([]string, len(queue.Phases))
		for i, p := range queue.Phases {
			phases[i] = string(p)
		}
		m.addLine(titleStyle.Render("Phases: ") + strings.Join(phases, " "))
	case "/round":
		m.input.SetValue(strings.Join(roundPhases, " "))
		return m, nil
	case "/refresh":
		return m, m.refreshSession()
	case "/log":
		m.lines = nil
		m.writeFeed()
		return m, m.loadLog()
	case "/copy":
		return m, m.copySessionID()
	default:
		m.addLine(errorStyle.Render("Unknown command: " + input))
	}
	m.writeFeed()
	return m, nil
}

// roundPhases is the usual order of one planning phase
var roundPhases = []string{
	string(queue.PhaseNewRound),
	string(queue.PhaseHealth),
	string(queue.PhaseFixBench),
	string(queue.PhaseBuy),
	string(queue.PhaseMove),
	string(queue.PhaseReplaceUnknown),
	string(queue.PhaseFinalComp),
	string(queue.PhasePlaceItems),
	string(queue.PhaseLabels),
}

func (m ConsoleUI) stream() tea.Cmd {
	return func() tea.Msg {
		err := listenToSSE(m.ctx, m.streamClient, m.config.APIBaseURL, m.session.ID, m.eventChan)
		return sseClosedMsg{err}
	}
}

func (m ConsoleUI) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.eventChan:
			return sseEventMsg{ev}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m ConsoleUI) enqueue(phase string) tea.Cmd {
	return func() tea.Msg {
		_, err := enqueuePhase(m.client, m.config.APIBaseURL, m.session.ID, phase)
		return enqueuedMsg{phase, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := getSession(m.client, m.config.APIBaseURL, m.session.ID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) loadLog() tea.Cmd {
	return func() tea.Msg {
		lines, err := getSessionLog(m.client, m.config.APIBaseURL, m.session.ID, logLimit)
		return logMsg{lines, err}
	}
}

func (m ConsoleUI) copySessionID() tea.Cmd {
	id := m.session.ID.String()
	return func() tea.Msg {
		if err := clipboard.WriteAll(id); err != nil {
			return logMsg{err: fmt.Errorf("copy failed: %w", err)}
		}
		return logMsg{lines: []string{"Copied session ID " + id}}
	}
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
			m.cancel()
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				m.cancel()
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.input.Focus()
				return m, textinput.Blink
			}
		}

	case sseEventMsg:
		// Keep consuming stream events while the modal is up
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, m.waitForEvent())
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Console?"))
	content.WriteString("\n\n")
	content.WriteString("Queued phases keep running on the workers.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	feedWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - feedWidth - 6

	status := ""
	if m.err != nil {
		status = errorStyle.Render("Error: " + m.err.Error())
	}

	feedPanel := feedPanelStyle.Width(feedWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.feed.View(),
			status,
			separatorStyle.Render(strings.Repeat("─", feedWidth-4)),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, feedPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar while phases run
func (m ConsoleUI) renderProgressBar() string {
	usable := m.feed.Width - 6
	if usable <= 0 {
		usable = 30
	}

	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String()) + " " + loadingStyle.Render(fmt.Sprintf("%d running", m.inFlight))
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
