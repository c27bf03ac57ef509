package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/call"
	"github.com/mvidakovic/pricaona/internal/media"
	"github.com/mvidakovic/pricaona/internal/room"
)

// SessionController is the slice of the room session the chat screen drives.
type SessionController interface {
	SendChat(content string)
	StartCall()
	AcceptCall()
	EndCall()
	Leave()
}

// sessionEvent wraps one room event for the Bubble Tea loop.
type sessionEvent struct{ ev room.Event }

// sessionClosed reports that the event stream ended.
type sessionClosed struct{}

// statsTick drives the media stats refresh while a call is up.
type statsTick time.Time

func statsTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statsTick(t)
	})
}

// ChatModel is the Bubble Tea model for one room visit.
type ChatModel struct {
	controller SessionController
	events     <-chan room.Event

	roomName string
	selfName string

	localStats  *media.StatsSink
	remoteStats *media.StatsSink

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool

	messages []room.ChatMessage
	roster   []api.Participant

	phase        call.Phase
	ringBanner   string
	callErr      string
	disconnected bool

	width  int
	height int
}

// NewChatModel builds the chat screen. The caller owns the session; the model
// only drives it through the controller and drains its event stream.
func NewChatModel(controller SessionController, events <-chan room.Event, roomName, selfName string, local, remote *media.StatsSink) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "poruka... (/call, /accept, /end, /quit)"
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return &ChatModel{
		controller:  controller,
		events:      events,
		roomName:    roomName,
		selfName:    selfName,
		localStats:  local,
		remoteStats: remote,
		input:       ti,
		spinner:     sp,
		phase:       call.Idle,
		width:       80,
		height:      24,
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// waitForEvent returns a command that blocks on the session event stream.
func (m *ChatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return sessionClosed{}
		}
		return sessionEvent{ev: ev}
	}
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.controller.Leave()
			return m, tea.Quit
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case spinner.TickMsg:
		if m.phase == call.OutgoingPending || m.phase == call.IncomingPending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.spinner.Tick)
		}

	case statsTick:
		if m.phase == call.Connected {
			cmds = append(cmds, statsTickCmd())
		}

	case sessionEvent:
		cmds = append(cmds, m.handleEvent(msg.ev)...)
		cmds = append(cmds, m.waitForEvent())

	case sessionClosed:
		if !m.disconnected {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit interprets the input line. Slash commands drive the call, anything
// else is chat.
func (m *ChatModel) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return nil
	}

	switch line {
	case "/call":
		m.callErr = ""
		m.controller.StartCall()
	case "/accept":
		m.callErr = ""
		m.ringBanner = ""
		m.controller.AcceptCall()
	case "/end":
		m.controller.EndCall()
	case "/quit":
		m.controller.Leave()
		return tea.Quit
	default:
		m.controller.SendChat(line)
	}
	return nil
}

func (m *ChatModel) handleEvent(ev room.Event) []tea.Cmd {
	var cmds []tea.Cmd

	switch ev := ev.(type) {
	case room.ChatAppended:
		m.messages = append(m.messages, ev.Message)
		m.refreshLog()

	case room.RosterUpdated:
		m.roster = ev.Participants

	case room.CallRinging:
		m.ringBanner = ev.Banner

	case room.CallChanged:
		prev := m.phase
		m.phase = ev.Phase
		if m.phase != call.IncomingPending {
			m.ringBanner = ""
		}
		if m.phase == call.Connected && prev != call.Connected {
			cmds = append(cmds, statsTickCmd())
		}

	case room.CallError:
		m.callErr = ev.Reason

	case room.Disconnected:
		m.disconnected = true
		cmds = append(cmds, tea.Quit)
	}

	return cmds
}

func (m *ChatModel) layout() {
	headerHeight := 2
	footerHeight := 5
	h := m.height - headerHeight - footerHeight
	if h < 3 {
		h = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, h)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = h
	}
	m.input.Width = m.width - 4
	m.refreshLog()
}

// refreshLog re-renders the chat log into the viewport and pins the bottom.
func (m *ChatModel) refreshLog() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *ChatModel) renderMessage(msg room.ChatMessage) string {
	if msg.Notification {
		return NotificationStyle.Render(fmt.Sprintf("* %s", msg.Content))
	}
	sender := SenderStyle.Render(msg.Sender)
	if msg.Mine {
		sender = SelfSenderStyle.Render(msg.Sender + " (ti)")
	}
	return fmt.Sprintf("%s %s", sender, msg.Content)
}

func (m *ChatModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s", IconRoom, m.roomName)))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s %s", IconPeer, m.selfName)))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.viewStatus())
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.viewHelp()))

	return b.String()
}

func (m *ChatModel) viewStatus() string {
	var parts []string

	if len(m.roster) > 0 {
		names := make([]string, 0, len(m.roster))
		for _, p := range m.roster {
			names = append(names, p.Username)
		}
		parts = append(parts, RosterHeaderStyle.Render(fmt.Sprintf("%s %d", IconPeer, len(m.roster)))+" "+MutedStyle.Render(strings.Join(names, ", ")))
	}

	switch m.phase {
	case call.OutgoingPending:
		parts = append(parts, fmt.Sprintf("%s %s zovem...", m.spinner.View(), IconCall))
	case call.IncomingPending:
		if m.ringBanner != "" {
			parts = append(parts, BannerStyle.Render(fmt.Sprintf("%s %s  (/accept ili /end)", IconCall, m.ringBanner)))
		}
	case call.Connected:
		parts = append(parts, StatusStyle.Render(fmt.Sprintf("%s u pozivu", IconVideo))+" "+m.viewStats())
	}

	if m.callErr != "" {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%s %s", IconError, m.callErr)))
	}
	if m.disconnected {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%s veza prekinuta", IconError)))
	}

	return strings.Join(parts, "\n")
}

// viewStats summarizes outbound and inbound media while connected.
func (m *ChatModel) viewStats() string {
	var parts []string
	for _, s := range m.localStats.Snapshot() {
		parts = append(parts, fmt.Sprintf("↑%s %s", s.Kind, formatBytes(s.Bytes)))
	}
	for _, s := range m.remoteStats.Snapshot() {
		parts = append(parts, fmt.Sprintf("↓%s %s", s.Kind, formatBytes(s.Bytes)))
	}
	if len(parts) == 0 {
		return ""
	}
	return MutedStyle.Render(strings.Join(parts, " "))
}

func (m *ChatModel) viewHelp() string {
	switch m.phase {
	case call.Idle:
		return "/call pozovi u video poziv · /quit izlaz · esc izlaz"
	case call.IncomingPending:
		return "/accept prihvati · /end odbij · /quit izlaz"
	default:
		return "/end prekini poziv · /quit izlaz"
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
