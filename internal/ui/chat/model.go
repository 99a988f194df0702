package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	chatpanel "github.com/nhle/mailassist/internal/chat"
	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/theme"
	"github.com/nhle/mailassist/internal/ui"
)

// RegionChangedMsg reports that a document region changed.
type RegionChangedMsg struct {
	Region string
}

// SubmitDoneMsg is sent when a submitted message has been answered.
type SubmitDoneMsg struct {
	Err error
}

// Model is the Bubble Tea host of a chat panel. The panel owns the
// conversation; the model only renders it and forwards input.
type Model struct {
	ctx      context.Context
	panel    *chatpanel.Panel
	doc      *page.Document
	changes  <-chan string
	account  string
	keys     *keys.KeyMap
	layout   ui.Layout
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	pending  int
	showHelp bool
}

// New creates a chat TUI for panel. ctx bounds every submitted message.
func New(
	ctx context.Context,
	panel *chatpanel.Panel,
	doc *page.Document,
	account string,
	k *keys.KeyMap,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your email..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 4000
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorGreen)

	m := Model{
		ctx:      ctx,
		panel:    panel,
		doc:      doc,
		changes:  doc.Watch(),
		account:  account,
		keys:     k,
		input:    ta,
		viewport: viewport.New(width, height),
		spinner:  sp,
		help:     help.New(),
	}
	m.SetSize(width, height)
	return m
}

// Init starts the cursor blink, the spinner and the document watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForChange())
}

// waitForChange returns a command that waits for the next region change.
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		region, ok := <-ch
		if !ok {
			return nil
		}
		return RegionChangedMsg{Region: region}
	}
}

// Update handles messages for the chat panel.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case RegionChangedMsg:
		if msg.Region == "location" && m.doc.Location() == page.LoginPath {
			return m, tea.Quit
		}
		m.refreshViewport()
		return m, m.waitForChange()

	case SubmitDoneMsg:
		m.pending--
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.pending > 0 {
			m.refreshViewport()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.panel.Reset()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.Reset()
		m.pending++
		return m, m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit returns a command that sends text through the panel.
func (m Model) submit(text string) tea.Cmd {
	panel, ctx := m.panel, m.ctx
	return func() tea.Msg {
		return SubmitDoneMsg{Err: panel.Submit(ctx, text)}
	}
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript builds the conversation display string.
func (m Model) renderTranscript() string {
	msgs := m.panel.Transcript()
	if len(msgs) == 0 {
		return theme.HelpStyle.Render(
			"Ask me about your mailbox. I can find, summarize and draft emails.")
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width).Foreground(theme.ColorWhite)

	var sections []string
	for _, msg := range msgs {
		label := "You"
		if msg.Role == model.RoleAssistant {
			label = "Assistant"
		}
		header := theme.RoleStyle(string(msg.Role)).Render(label+":") + " " +
			theme.DimmedStyle.Render(msg.Timestamp.Format("15:04:05"))

		content := body.Render(msg.Content)
		if msg.Loading {
			content = m.spinner.View() + " " + theme.HelpStyle.Render(msg.Content)
		}
		sections = append(sections, header, content, "")
	}
	return strings.Join(sections, "\n")
}

// alertLine returns the newest visible alert, styled by level.
func (m Model) alertLine() string {
	alerts := m.doc.Alerts()
	if len(alerts) == 0 {
		return ""
	}
	last := alerts[len(alerts)-1]
	return theme.AlertStyle(string(last.Level)).Render(last.Message)
}

// View renders the chat panel.
func (m Model) View() string {
	var hints string
	if m.showHelp {
		hints = m.help.FullHelpView(m.keys.FullHelp())
	} else {
		hints = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		theme.DimmedStyle.Render(strings.Repeat("─", max(m.layout.Width-6, 1))),
		m.input.View(),
	)

	return m.layout.RenderWithFrame(
		m.layout.RenderHeader("Mail Assistant", m.account),
		theme.PanelStyle.Width(m.layout.Width-2).Render(content),
		m.layout.RenderStatusBar(hints, m.alertLine()),
	)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.input.SetWidth(max(width-8, 10))

	vpHeight := m.layout.ContentHeight() - 9 // input, separator, panel border and padding
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = max(width-8, 10)
	m.viewport.Height = vpHeight
	m.help.Width = width
}
