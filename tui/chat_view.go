// ABOUTME: TUI chat window for drafting a follow-up message
// ABOUTME: Sends one instruction at a time and renders Markdown replies with glamour
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/nudge/assistant"
	"github.com/harperreed/nudge/models"
)

type sender int

const (
	senderUser sender = iota
	senderAI
)

type chatMessage struct {
	from sender
	text string
	at   time.Time
}

// draftMsg carries the result of one DraftFollowUp call. chatID is the
// session that sent it; replies for an earlier session are dropped.
type draftMsg struct {
	chatID int
	answer string
	err    error
}

func (m *Model) openChat(cc models.ChatContext) {
	m.chatCtx = cc
	m.chatID++
	m.viewMode = ViewChat
	m.processing = false
	m.input.SetValue("")
	m.input.Focus()
	m.messages = []chatMessage{{
		from: senderAI,
		text: m.drafter.Greeting(m.ctx, cc),
		at:   time.Now(),
	}}
	m.refreshTranscript()
}

func (m *Model) closeChat() {
	m.chatCtx.Close()
	m.chatID++
	m.messages = nil
	m.processing = false
	m.input.Blur()
	if m.contact != nil {
		m.viewMode = ViewEvents
	} else {
		m.viewMode = ViewContacts
	}
}

func (m Model) handleChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeChat()
		return m, nil
	case "enter":
		return m.send()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.processing {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send posts the current input. Blank input and sends while a draft is in
// flight are ignored.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.processing {
		return m, nil
	}

	m.messages = append(m.messages, chatMessage{from: senderUser, text: text, at: time.Now()})
	m.input.SetValue("")
	m.processing = true
	m.refreshTranscript()

	ctx, drafter, cc, chatID := m.ctx, m.drafter, m.chatCtx, m.chatID
	draft := func() tea.Msg {
		answer, err := drafter.DraftFollowUp(ctx, cc, text)
		return draftMsg{chatID: chatID, answer: answer, err: err}
	}
	return m, tea.Batch(draft, m.spinner.Tick)
}

func (m Model) handleDraft(msg draftMsg) (tea.Model, tea.Cmd) {
	if m.viewMode != ViewChat || msg.chatID != m.chatID {
		return m, nil
	}
	m.processing = false

	text := msg.answer
	if msg.err != nil {
		text = assistant.Reply(msg.err)
	}
	m.messages = append(m.messages, chatMessage{from: senderAI, text: text, at: time.Now()})
	m.refreshTranscript()
	return m, nil
}

func (m *Model) refreshTranscript() {
	if m.viewMode != ViewChat {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.from {
		case senderUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.text)
			b.WriteString("\n")
		case senderAI:
			b.WriteString(assistantStyle.Render("nudge"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.text))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderMarkdown(s string) string {
	if m.renderer == nil {
		return s
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderChatView() string {
	var b strings.Builder

	title := "Draft a follow-up"
	if m.contact != nil {
		title += " to " + m.contact.Name
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.processing {
		b.WriteString(m.spinner.View())
		b.WriteString(" drafting…\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • pgup/pgdown: scroll • esc: close"))
	return b.String()
}
