package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colText   = lipgloss.Color("#cdd6f4")
	colMuted  = lipgloss.Color("#a6adc8")
	colAccent = lipgloss.Color("#74c7ec")
	colGood   = lipgloss.Color("#a6e3a1")
	colWarm   = lipgloss.Color("#fab387")
	colBorder = lipgloss.Color("#45475a")

	appStyle = lipgloss.NewStyle().Padding(1, 2)

	clockStyle = lipgloss.NewStyle().
			Foreground(colText).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colBorder).
			Padding(1, 4)

	clockRunning = clockStyle.BorderForeground(colGood)

	titleStyle    = lipgloss.NewStyle().Foreground(colAccent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colMuted)
	selectedStyle = lipgloss.NewStyle().Foreground(colWarm).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colMuted).Italic(true)
)

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenTimer:
		body = m.viewTimer()
	case screenHistory:
		body = m.viewHistory()
	case screenDetail:
		body = m.viewDetail()
	case screenAuth:
		body = m.viewAuth()
	}

	footer := statusStyle.Render(m.status) + "\n" + m.help.View(m.keys)
	return appStyle.Render(body + "\n\n" + footer)
}

func (m Model) viewTimer() string {
	snap := m.timer.State()

	clock := clockStyle
	if snap.Running {
		clock = clockRunning
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("laptrack"))
	if email := m.identity.CurrentEmail(); email != "" {
		b.WriteString(mutedStyle.Render("  " + email))
	}
	b.WriteString("\n\n")
	b.WriteString(clock.Render(snap.Elapsed.String()))
	b.WriteString("\n\n")

	if m.editingTitle {
		b.WriteString("title: " + m.titleInput.View())
	} else if snap.Title != "" {
		b.WriteString(mutedStyle.Render("title: " + snap.Title))
	}

	if len(snap.Laps) > 0 {
		b.WriteString("\n\n")
		// Newest lap on top, like a lap board
		for i := len(snap.Laps) - 1; i >= 0; i-- {
			lap := snap.Laps[i]
			b.WriteString(fmt.Sprintf("  lap %2d  %s  (%s)\n",
				lap.Number, lap.LapTime.String(), lap.TotalTime.String()))
		}
	}

	return b.String()
}

func (m Model) viewHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("history"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d sessions", len(m.sessions))))
	b.WriteString("\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(mutedStyle.Render("  no sessions yet"))
		return b.String()
	}

	for i, sess := range m.sessions {
		name := sess.Title
		if name == "" {
			name = "untitled"
		}
		line := fmt.Sprintf("%s  %s  %s  %d laps", sess.Date, sess.TotalTime.String(), name, sess.LapCount)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder
	name := m.detail.Title
	if name == "" {
		name = "untitled"
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.detail.Date))
	b.WriteString("\n\n")
	b.WriteString("total  " + m.detail.TotalTime.String())
	b.WriteString("\n\n")

	if len(m.detail.Laps) == 0 {
		b.WriteString(mutedStyle.Render("no laps"))
		return b.String()
	}
	for _, lap := range m.detail.Laps {
		b.WriteString(fmt.Sprintf("  lap %2d  %s  (%s)\n",
			lap.Number, lap.LapTime.String(), lap.TotalTime.String()))
	}
	return b.String()
}

func (m Model) viewAuth() string {
	var b strings.Builder
	if m.mode == modeSignUp {
		b.WriteString(titleStyle.Render("sign up"))
	} else {
		b.WriteString(titleStyle.Render("sign in"))
	}
	if email := m.identity.CurrentEmail(); email != "" {
		b.WriteString(mutedStyle.Render("  (signed in as " + email + ")"))
	}
	b.WriteString("\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")
	b.WriteString(mutedStyle.Render("enter submit · tab switch field · ctrl+n sign-in/up · ctrl+o sign out · esc back"))
	return b.String()
}
