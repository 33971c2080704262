package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/localchat/internal/api"
	"github.com/diogo/localchat/internal/conversation"
	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
	"github.com/diogo/localchat/internal/render"
)

// Options configures the chat TUI
type Options struct {
	// Model preselects a model ID. Empty leaves the selection to the user.
	Model string
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
	// Probe checks server reachability on start.
	Probe bool
	// Render configures markdown rendering of replies.
	Render render.Options
	Logger *slog.Logger
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
	// Clock is the time source for notices. Defaults to time.Now.
	Clock func() time.Time
}

// Model represents the TUI state
type Model struct {
	client  api.GatewayClient
	session *conversation.Session
	opts    Options
	log     *slog.Logger

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// cancel aborts the in-flight request, if any.
	cancel context.CancelFunc

	ready          bool
	animationFrame int

	picker picker

	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(client api.GatewayClient, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Render == (render.Options{}) {
		opts.Render = render.DefaultOptions()
	}

	sessionOpts := []conversation.Option{conversation.WithModel(opts.Model)}
	if opts.Clock != nil {
		sessionOpts = append(sessionOpts, conversation.WithClock(opts.Clock))
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	// Enter sends; these insert a line break instead.
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:   client,
		session:  conversation.NewSession(sessionOpts...),
		opts:     opts,
		log:      opts.Logger,
		textarea: ta,
		spinner:  s,
	}
}

// Session exposes the conversation state, mainly for tests.
func (m Model) Session() *conversation.Session {
	return m.session
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.opts.Probe {
		cmds = append(cmds, m.probe())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case probeResultMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			n := m.session.ConnectivityFailed(msg.err)
			return m, noticeTimer(n.ID)
		}
		return m, nil

	case streamOpenedMsg:
		if !m.isCurrent(msg.exchange) {
			msg.stream.Close()
			return m, nil
		}
		return m, waitForUpdate(msg.exchange, msg.stream)

	case streamUpdateMsg:
		if !m.session.ApplyFragment(msg.exchange, msg.text) {
			msg.stream.Close()
			return m, nil
		}
		m.refresh(true)
		return m, waitForUpdate(msg.exchange, msg.stream)

	case streamDoneMsg:
		cmd = m.finish(msg.exchange, msg.err)
		return m, cmd

	case noticeExpiredMsg:
		m.session.DismissNotice(msg.id)
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.log.Warn("clipboard copy failed", logger.ERROR, msg.err)
			cmd = m.notify(conversation.NoticeError, "Clipboard unavailable")
			return m, cmd
		}
		cmd = m.notify(conversation.NoticeInfo, "Copied reply to clipboard")
		return m, cmd

	case spinner.TickMsg:
		if m.session.InFlight() {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case animationTickMsg:
		if m.session.InFlight() {
			m.animationFrame++
			return m, animationTick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.picker.open {
			return m.updatePicker(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			m.abort()
			return m, tea.Quit

		case "esc":
			if m.session.InFlight() {
				m.abort()
				return m, nil
			}
			return m, tea.Quit

		case "tab":
			m.openPicker()
			return m, nil

		case "ctrl+l":
			m.clear()
			return m, nil

		case "ctrl+y":
			cmd = m.copyLastReply()
			return m, cmd

		case "enter":
			return m.submit()
		}
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.session.SetInput(m.textarea.Value())

		// Printable keys belong to the input, not to viewport scrolling.
		if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
			return m, tea.Batch(cmds...)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 1
	noticeHeight := 3

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - noticeHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refresh(false)
}

// submit handles Enter: slash commands first, then a send when allowed.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	switch strings.ToLower(input) {
	case "/exit", "/quit", "exit", "quit":
		m.abort()
		return m, tea.Quit
	case "/clear":
		m.textarea.Reset()
		m.session.SetInput("")
		m.clear()
		return m, nil
	case "/model", "/models":
		m.textarea.Reset()
		m.session.SetInput("")
		m.openPicker()
		return m, nil
	case "/copy":
		m.textarea.Reset()
		m.session.SetInput("")
		cmd := m.copyLastReply()
		return m, cmd
	}

	m.session.SetInput(m.textarea.Value())
	if input != "" && m.session.Model() == "" && !m.session.InFlight() {
		cmd := m.notify(conversation.NoticeWarning, "Select a model first (Tab)")
		return m, cmd
	}
	if !m.session.CanSend() {
		return m, nil
	}

	ex, err := m.session.Submit()
	if err != nil {
		return m, nil
	}
	m.textarea.Reset()
	m.animationFrame = 0

	ctx, cancel := m.requestContext()
	m.cancel = cancel

	m.log.Info("sending message", logger.EXCHANGE, ex.ID, logger.MODEL, ex.Model, "chars", len(ex.Message))
	m.refresh(true)

	return m, tea.Batch(
		m.openStream(ctx, ex),
		m.spinner.Tick,
		animationTick(),
	)
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

// finish completes exchange id and releases its request context.
func (m *Model) finish(id int, err error) tea.Cmd {
	if !m.session.Complete(id, err) {
		return nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	switch {
	case err == nil:
		m.log.Info("reply complete", logger.EXCHANGE, id)
	case errors.Is(err, context.Canceled):
		m.log.Info("request cancelled", logger.EXCHANGE, id, logger.ERROR, err)
	default:
		m.log.Error("request failed", logger.EXCHANGE, id, logger.ERROR, err)
	}

	if m.textarea.Value() != m.session.Input() {
		m.textarea.SetValue(m.session.Input())
	}
	m.refresh(true)

	if n, ok := m.session.Notice(); ok && err != nil {
		return noticeTimer(n.ID)
	}
	return nil
}

// abort cancels the in-flight request. The exchange ends when the stream
// reports the cancellation.
func (m *Model) abort() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) clear() {
	if m.session.Reset() {
		m.abort()
		m.cancel = nil
		m.log.Info("conversation cleared mid-request")
	}
	m.refresh(true)
}

func (m *Model) isCurrent(id int) bool {
	return m.session.InFlight() && m.session.CurrentExchange() == id
}

func (m *Model) notify(kind conversation.NoticeKind, text string) tea.Cmd {
	n := m.session.Notify(kind, text)
	return noticeTimer(n.ID)
}

func (m *Model) copyLastReply() tea.Cmd {
	text := m.session.LastAssistantText()
	if text == "" {
		return m.notify(conversation.NoticeInfo, "Nothing to copy yet")
	}
	copyFn := m.opts.Copy
	return func() tea.Msg {
		return clipboardResultMsg{err: copyFn(text)}
	}
}

// refresh rebuilds the viewport content from the conversation.
func (m *Model) refresh(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTurns())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderTurns() string {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	opts := render.ReplyOptions(m.opts.Render).WithWidth(bubbleWidth - 4)

	for i, turn := range m.session.Turns() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case i == 0 && turn.Role == models.RoleAssistant:
			content.WriteString(welcomeStyle.Width(bubbleWidth).Render(turn.Text))
		case turn.Role == models.RoleUser:
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(turn.Text)
			content.WriteString(label + "\n" + bubble)
		default:
			label := assistantLabelStyle.Render("✦ " + m.modelTitle())
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(render.Reply(turn.Text, opts))
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	return content.String()
}

func (m Model) modelTitle() string {
	id := m.session.Model()
	if id == "" {
		return "Assistant"
	}
	return models.ModelFromName(id).Title()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if m.picker.open {
		return m.renderPicker()
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	var sections []string

	// Header
	modelLabel := hintStyle.Render("no model selected")
	if m.session.Model() != "" {
		modelLabel = subtitleStyle.Render(m.modelTitle())
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ localchat"),
		hintStyle.Render("  •  "),
		modelLabel,
		hintStyle.Render("  •  "+m.client.BaseURL()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Conversation
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	// Notice
	if n, ok := m.session.Notice(); ok {
		sections = append(sections, m.renderNotice(n, contentWidth))
	}

	// Input
	label := inputLabelStyle.Render("You")
	if m.session.InFlight() {
		label = m.renderLoadingAnimation()
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderNotice(n conversation.Notice, width int) string {
	style, icon, border := infoStyle, "ℹ", colorSecondary
	switch n.Kind {
	case conversation.NoticeError:
		style, icon, border = errorStyle, "⚠", colorError
	case conversation.NoticeWarning:
		style, icon, border = warningStyle, "⚠", colorWarning
	}
	return toastStyle.
		BorderForeground(border).
		Width(width).
		Render(style.Render(icon + " " + n.Text))
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[frame%len(gradientColors)]).
		Bold(true).
		Render(chars[frame%len(chars)])

	barWidth := 12
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + m.modelTitle() + " is replying ")
	hint := hintStyle.Render("(Esc to cancel)")

	return fmt.Sprintf("%s %s%s%s", spin, bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts. The Send
// hint mirrors whether Enter would send.
func (m Model) renderStatusBar(width int) string {
	send := statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Send")
	if m.session.SendState() == conversation.SendDisabled {
		send = statusDisabledStyle.Render("Enter Send")
	}

	esc := "Quit"
	if m.session.InFlight() {
		esc = "Cancel"
	}

	items := []string{
		send,
		statusKeyStyle.Render("Alt+Enter") + statusDescStyle.Render(" Newline"),
		statusKeyStyle.Render("Tab") + statusDescStyle.Render(" Model"),
		statusKeyStyle.Render("Ctrl+L") + statusDescStyle.Render(" Clear"),
		statusKeyStyle.Render("Ctrl+Y") + statusDescStyle.Render(" Copy"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" "+esc),
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat starts the chat TUI and blocks until it exits
func RunChat(client api.GatewayClient, opts Options) error {
	p := tea.NewProgram(
		NewChatModel(client, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
