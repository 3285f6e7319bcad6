package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// StatusPill returns a colored indicator for a work program status.
func StatusPill(status domain.ProgramStatus) string {
	switch status {
	case domain.StatusDraft:
		return StyleDim.Render("○ Draft")
	case domain.StatusOngoing:
		return StyleYellow.Render("▶ Ongoing")
	case domain.StatusDone:
		return StyleGreen.Render("✔ Done")
	case domain.StatusCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// ActivePill marks hierarchy entries as active or archived.
func ActivePill(active bool) string {
	if active {
		return StyleGreen.Render("● Active")
	}
	return StyleDim.Render("✖ Archived")
}

// TruncID shortens a UUID to its first 8 characters for display.
func TruncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// DateText formats an optional date, or a dim dash when unset.
func DateText(t *time.Time) string {
	if t == nil {
		return Dim("-")
	}
	return t.Format("2006-01-02")
}

// OrDash returns s, or a dim dash when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("-")
	}
	return s
}

// kv renders one "label: value" line of a detail panel.
func kv(b *strings.Builder, label, value string) {
	b.WriteString(StyleDim.Render(padRight(label+":", 18)))
	b.WriteString(value)
	b.WriteString("\n")
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s + " "
}
