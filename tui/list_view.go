// ABOUTME: TUI contact list with reach-out status
// ABOUTME: Enter opens a contact's interactions; f toggles the follow-up filter
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/nudge/db"
	"github.com/harperreed/nudge/models"
)

func (m *Model) loadContacts() {
	q := db.ContactQuery{Limit: 200}
	if m.followUpFilter {
		q.Filter = db.FilterFollowUp
	}

	contacts, err := m.store.FindContacts(m.ctx, q)
	m.err = err
	m.contacts = contacts

	now := time.Now()
	rows := make([]table.Row, 0, len(contacts))
	for _, c := range contacts {
		last := "-"
		if c.LastReachOutDate != nil {
			last = models.FormatRelativeTimeShort(*c.LastReachOutDate, now)
		}
		rows = append(rows, table.Row{
			c.Name,
			c.Status,
			c.ResolvedPreferences().FollowUpFrequency,
			last,
			c.ReachOutLabel(now),
		})
	}

	m.contactTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Status", Width: 8},
			{Title: "Cadence", Width: 9},
			{Title: "Last", Width: 8},
			{Title: "", Width: 14},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)
}

func (m Model) renderContactsView() string {
	var b strings.Builder

	title := "Contacts"
	if m.followUpFilter {
		title = "Contacts needing a follow-up"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case len(m.contacts) == 0:
		b.WriteString("No contacts yet. Add one with `nudge contact add`.")
	default:
		b.WriteString(m.contactTable.View())
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓: navigate • enter: interactions • f: toggle follow-up filter • q: quit"))
	return b.String()
}

func (m Model) handleContactKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "f":
		m.followUpFilter = !m.followUpFilter
		m.loadContacts()
		return m, nil
	case "enter":
		i := m.contactTable.Cursor()
		if i < 0 || i >= len(m.contacts) {
			return m, nil
		}
		contact := m.contacts[i]
		m.openEvents(&contact)
		return m, nil
	}

	var cmd tea.Cmd
	m.contactTable, cmd = m.contactTable.Update(msg)
	return m, cmd
}
