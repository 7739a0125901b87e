// ABOUTME: TUI list of one contact's interactions
// ABOUTME: Enter drafts a follow-up for the selected interaction; t cycles the tone
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/nudge/models"
)

var toneCycle = []models.Tone{models.ToneProfessional, models.ToneCasual, models.ToneSincere}

func (m *Model) openEvents(contact *models.Contact) {
	m.contact = contact
	m.tone = contact.ResolvedPreferences().MessageTone
	m.viewMode = ViewEvents

	events, err := m.store.ListEventsByContact(m.ctx, contact.ID)
	m.err = err
	m.events = events

	rows := make([]table.Row, 0, len(events))
	for _, e := range events {
		rows = append(rows, table.Row{
			e.Date.Format("2006-01-02"),
			truncate(firstLine(e.NotesAISummary), 40),
			strings.Join(e.Tags, ", "),
			e.FollowUpStatus,
		})
	}

	m.eventTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 10},
			{Title: "Summary", Width: 40},
			{Title: "Tags", Width: 18},
			{Title: "Follow-up", Width: 9},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)
}

func (m Model) renderEventsView() string {
	if m.contact == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.contact.Name))
	b.WriteString("\n")
	if m.contact.InfoAISummary != "" {
		b.WriteString(truncate(firstLine(m.contact.InfoAISummary), 76))
		b.WriteString("\n\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case len(m.events) == 0:
		b.WriteString("No interactions logged yet.")
	default:
		b.WriteString(m.eventTable.View())
	}

	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Tone: %s\n", m.tone))
	b.WriteString(helpStyle.Render("↑/↓: navigate • enter: draft follow-up • t: change tone • esc: back"))
	return b.String()
}

func (m Model) handleEventKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.viewMode = ViewContacts
		m.err = nil
		return m, nil
	case "t":
		m.tone = nextTone(m.tone)
		return m, nil
	case "enter":
		i := m.eventTable.Cursor()
		if i < 0 || i >= len(m.events) {
			return m, nil
		}
		contactID := m.contact.ID
		eventID := m.events[i].ID
		m.openChat(models.OpenChat(&contactID, &eventID, m.tone))
		return m, tea.Batch(textinput.Blink, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.eventTable, cmd = m.eventTable.Update(msg)
	return m, cmd
}

func nextTone(t models.Tone) models.Tone {
	for i, candidate := range toneCycle {
		if candidate == t {
			return toneCycle[(i+1)%len(toneCycle)]
		}
	}
	return toneCycle[0]
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
