package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sentencecards/internal/app"
	"sentencecards/internal/audio"
	"sentencecards/internal/render"
	"sentencecards/internal/sentences"
	"sentencecards/internal/source"
)

// EventMsg delivers an app event to the model.
type EventMsg struct{ Event app.Event }

// audioMsg is an event from the audio controller's goroutine.
type audioMsg struct{ Event app.Event }

// toggledMsg reports that a PlayToggled dispatch finished.
type toggledMsg struct{}

// PracticeOptions configures a PracticeModel.
type PracticeOptions struct {
	Source  source.Source
	GroupID string
	Level   sentences.Level
	Styles  Styles
	// Player plays recordings. Nil disables audio.
	Player audio.Player
	Files  map[sentences.Level]string
}

// PracticeModel is the interactive practice screen for one group at a time.
type PracticeModel struct {
	ctx      context.Context
	src      source.Source
	d        *app.Dispatcher
	resolver *audio.GroupResolver
	group    *atomic.Pointer[string]
	events   chan app.Event

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	width    int
	height   int
	quitting bool
}

// NewPracticeModel creates the model. Call Close when the program exits.
func NewPracticeModel(ctx context.Context, opts PracticeOptions) *PracticeModel {
	m := &PracticeModel{
		ctx:      ctx,
		src:      opts.Source,
		group:    new(atomic.Pointer[string]),
		events:   make(chan app.Event, 8),
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   opts.Styles,
	}
	id := opts.GroupID
	m.group.Store(&id)
	m.d = app.NewDispatcher(ctx, app.NewState(opts.GroupID, opts.Level), nil)

	if opts.Player != nil {
		m.resolver = &audio.GroupResolver{
			Source:  opts.Source,
			Files:   opts.Files,
			Current: func() string { return *m.group.Load() },
		}
		m.d.AttachAudio(audio.NewController(opts.Player, m.resolver, m.audioFinished))
	}
	m.refresh()
	return m
}

// audioFinished runs on the controller's goroutine; the event is handed to
// the program through the channel.
func (m *PracticeModel) audioFinished(level sentences.Level, err error) {
	var ev app.Event = app.PlaybackStopped{Level: level}
	if err != nil {
		ev = app.PlaybackFailed{Level: level, Err: err}
	}
	select {
	case m.events <- ev:
	default:
	}
}

func (m *PracticeModel) waitForAudio() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		return audioMsg{Event: <-ch}
	}
}

// State returns the current state.
func (m *PracticeModel) State() app.State {
	return m.d.State()
}

// Close stops playback and removes downloaded recordings.
func (m *PracticeModel) Close() error {
	m.d.Close()
	if m.resolver != nil {
		return m.resolver.Close()
	}
	return nil
}

func (m *PracticeModel) loadSentences(groupID string) tea.Cmd {
	return func() tea.Msg {
		return EventMsg{Event: app.LoadSentences(m.ctx, m.src, groupID)}
	}
}

func (m *PracticeModel) loadIndex() tea.Cmd {
	return func() tea.Msg {
		if nav, ok := app.LoadIndex(m.ctx, m.src); ok {
			return EventMsg{Event: nav}
		}
		return nil
	}
}

// Init starts loading the group and the index concurrently.
func (m *PracticeModel) Init() tea.Cmd {
	s := m.d.State()
	if s.GroupID == "" {
		m.d.Dispatch(app.LoadFailed{Err: app.ErrMissingGroupID})
		m.refresh()
		return nil
	}
	return tea.Batch(m.loadSentences(s.GroupID), m.loadIndex(), m.waitForAudio())
}

// Update handles messages.
func (m *PracticeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case EventMsg:
		m.d.Dispatch(msg.Event)
		m.refresh()
		return m, nil

	case audioMsg:
		m.d.Dispatch(msg.Event)
		m.refresh()
		return m, m.waitForAudio()

	case toggledMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *PracticeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.d.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.d.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Both):
		m.setLevel(sentences.LevelBoth)
	case key.Matches(msg, m.keys.Intermediate):
		m.setLevel(sentences.LevelIntermediate)
	case key.Matches(msg, m.keys.Advanced):
		m.setLevel(sentences.LevelAdvanced)
	case key.Matches(msg, m.keys.Cycle):
		m.setLevel(s.Level.Next())

	case key.Matches(msg, m.keys.Play):
		// Locating a recording may download it.
		return m, func() tea.Msg {
			m.d.Dispatch(app.PlayToggled{})
			return toggledMsg{}
		}

	case key.Matches(msg, m.keys.Dismiss):
		m.d.Dispatch(app.AlertDismissed{})
		m.refresh()

	case key.Matches(msg, m.keys.Next):
		if v := s.View(); v.Next != nil {
			return m, m.openGroup(v.Next.ID)
		}
	case key.Matches(msg, m.keys.Prev):
		if v := s.View(); v.Prev != nil {
			return m, m.openGroup(v.Prev.ID)
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *PracticeModel) setLevel(l sentences.Level) {
	m.d.Dispatch(app.LevelChanged{Level: l})
	m.refresh()
	m.viewport.GotoTop()
}

// openGroup stops playback and switches to another group.
func (m *PracticeModel) openGroup(id string) tea.Cmd {
	m.d.Close()
	m.d.Dispatch(app.PlaybackStopped{})
	m.group.Store(&id)
	m.d.Dispatch(app.GroupSelected{GroupID: id})
	m.refresh()
	m.viewport.GotoTop()
	return m.loadSentences(id)
}

// SetSize updates the size of the viewport.
func (m *PracticeModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w
	m.viewport.Width = w
	// Header, tabs, alert, status and help lines.
	m.viewport.Height = max(h-6, 1)
	m.refresh()
}

// refresh re-renders the sentence list into the viewport.
func (m *PracticeModel) refresh() {
	m.viewport.SetContent(m.body(m.d.State().View()))
}

func (m *PracticeModel) body(v app.View) string {
	switch {
	case v.Err != nil:
		return m.styles.Error.Render(render.ErrorMessage(v.Err)) + "\n" + m.styles.Muted.Render(v.Err.Error())
	case v.Loading:
		return m.styles.Muted.Render("Loading...")
	case v.Empty:
		return m.styles.Muted.Render(render.MsgEmpty)
	}

	var sb strings.Builder
	for _, s := range v.Sentences {
		card := m.styles.Prompt.Render(s.Prompt) + "\n" + m.styles.Chinese.Render(s.Chinese)
		if m.width > 4 {
			sb.WriteString(m.styles.Card.Width(m.width - 2).Render(card))
		} else {
			sb.WriteString(m.styles.Card.Render(card))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *PracticeModel) tabs(v app.View) string {
	parts := make([]string, 0, len(sentences.Levels))
	for _, l := range sentences.Levels {
		label := l.Title()
		if v.Counts != nil {
			label = fmt.Sprintf("%s (%d)", label, v.Counts[l])
		}
		if l == v.Level {
			parts = append(parts, m.styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *PracticeModel) status(v app.View) string {
	var parts []string
	if v.Prev != nil {
		parts = append(parts, "← "+v.Prev.Title)
	}
	if !v.Loading && v.Err == nil {
		parts = append(parts, fmt.Sprintf("%d sentences", len(v.Sentences)))
	}
	if v.Playing != "" {
		parts = append(parts, m.styles.Playing.Render("♪ playing "+v.Playing.Title()))
	}
	if v.Next != nil {
		parts = append(parts, v.Next.Title+" →")
	}
	return m.styles.StatusBar.Render(strings.Join(parts, " · "))
}

// View renders the screen.
func (m *PracticeModel) View() string {
	if m.quitting {
		return ""
	}
	v := m.d.State().View()

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(v.Title))
	sb.WriteString("\n")
	sb.WriteString(m.tabs(v))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	if v.Alert != "" {
		sb.WriteString(m.styles.Alert.Render("⚠ " + v.Alert + "  (x to dismiss)"))
		sb.WriteString("\n")
	}
	sb.WriteString(m.status(v))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
