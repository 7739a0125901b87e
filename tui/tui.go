// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Browse contacts and interactions, then draft a follow-up in a chat window
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/nudge/db"
	"github.com/harperreed/nudge/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewContacts ViewMode = iota
	ViewEvents
	ViewChat
)

// Store is the data the browser views read.
type Store interface {
	FindContacts(ctx context.Context, q db.ContactQuery) ([]models.Contact, error)
	ListEventsByContact(ctx context.Context, contactID uuid.UUID) ([]models.Event, error)
}

// Drafter produces the chat window's greeting and drafts.
type Drafter interface {
	Greeting(ctx context.Context, cc models.ChatContext) string
	DraftFollowUp(ctx context.Context, cc models.ChatContext, instruction string) (string, error)
}

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	store    Store
	drafter  Drafter
	viewMode ViewMode

	// Contact list state
	contacts       []models.Contact
	contactTable   table.Model
	followUpFilter bool

	// Event list state
	contact    *models.Contact
	events     []models.Event
	eventTable table.Model
	tone       models.Tone

	// Chat window state
	chatCtx    models.ChatContext
	chatID     int // bumped on every open and close; tags in-flight drafts
	messages   []chatMessage
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	renderer   *glamour.TermRenderer
	processing bool

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a model starting on the contact list.
func NewModel(ctx context.Context, store Store, drafter Drafter) Model {
	ti := textinput.New()
	ti.Placeholder = "What should the follow-up say? (Enter to send, Esc to close)"
	ti.Prompt = "│ "
	ti.CharLimit = 4000
	ti.Width = 76

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		ctx:      ctx,
		store:    store,
		drafter:  drafter,
		viewMode: ViewContacts,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 16),
		renderer: newRenderer(76),
		width:    80,
		height:   24,
	}
	m.loadContacts()
	return m
}

// NewChatModel opens directly on the chat window for one interaction.
func NewChatModel(ctx context.Context, store Store, drafter Drafter, cc models.ChatContext) Model {
	m := NewModel(ctx, store, drafter)
	m.openChat(cc)
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	if m.viewMode == ViewChat {
		return tea.Batch(textinput.Blink, m.spinner.Tick)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case draftMsg:
		return m.handleDraft(msg)
	case spinner.TickMsg:
		if m.processing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewContacts:
		return m.renderContactsView()
	case ViewEvents:
		return m.renderEventsView()
	case ViewChat:
		return m.renderChatView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewContacts:
		return m.handleContactKeys(msg)
	case ViewEvents:
		return m.handleEventKeys(msg)
	case ViewChat:
		return m.handleChatKeys(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.contactTable.SetHeight(max(height-8, 3))
	m.eventTable.SetHeight(max(height-10, 3))

	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-9, 3)
	m.input.Width = max(width-6, 20)
	m.renderer = newRenderer(max(width-8, 20))
	m.refreshTranscript()
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)
