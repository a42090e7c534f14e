package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AntoineGS/ticklist/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	v := m.session.View()
	b.WriteString(m.renderHeader(v))
	b.WriteString("\n")

	for _, w := range m.warnings {
		b.WriteString(WarningStyle.Render("! "+w.Message) + "\n")
		if w.Detail != "" {
			b.WriteString(MutedTextStyle.Render(strings.TrimRight(w.Detail, "\n")) + "\n")
		}
	}

	b.WriteString(m.renderBody(v))
	b.WriteString(m.renderFooter())

	return BaseStyle.Render(b.String())
}

func (m Model) renderHeader(v session.View) string {
	if !v.Loaded {
		return TitleStyle.Render("ticklist")
	}

	title := TitleStyle.Render("ticklist: " + filepath.Base(v.Source))
	progress := ProgressStyle.Render(fmt.Sprintf("%d of %d remaining", v.Remaining, v.Total))

	return lipgloss.JoinVertical(lipgloss.Left, title, progress)
}

func (m Model) renderBody(v session.View) string {
	switch {
	case !v.Loaded:
		return MutedTextStyle.Render("No list loaded.") + "\n"
	case v.Total == 0:
		return MutedTextStyle.Render("The list is empty.") + "\n"
	}

	var b strings.Builder

	width := len(fmt.Sprint(v.Rows[len(v.Rows)-1].Index))
	textWidth := max(m.width-framePadding-rowPrefixWidth-width-2, minTextWidth)

	for _, row := range v.Rows {
		b.WriteString(renderRow(row, width, textWidth) + "\n")
		if row.Detail != "" {
			indent := strings.Repeat(" ", rowPrefixWidth+width+2)
			detail := runewidth.Truncate(row.Detail, textWidth, Ellipsis)
			b.WriteString(indent + DetailStyle.Render(detail) + "\n")
		}
	}

	if v.Complete {
		b.WriteString("\n" + SuccessStyle.Render("All items checked.") + "\n")
	}

	return b.String()
}

func renderRow(row session.Row, width, textWidth int) string {
	marker := " "
	box := CheckboxUnchecked
	style := PendingRowStyle

	switch row.Status {
	case session.RowDone:
		box = CheckedStyle.Render(CheckboxChecked)
		style = DoneRowStyle
	case session.RowActionable:
		marker = MarkerActionable
		style = ActionRowStyle
	}
	if row.Highlight && row.Status != session.RowActionable {
		marker = MarkerHighlight
		style = HighlightRowStyle
	}

	text := runewidth.Truncate(row.Text, textWidth, Ellipsis)

	return fmt.Sprintf("%s %s %*d. %s", marker, box, width, row.Index, style.Render(text))
}

func (m Model) renderFooter() string {
	var b strings.Builder

	switch m.Screen {
	case ScreenJump, ScreenExport:
		b.WriteString(BoxStyle.Render(m.input.View()) + "\n")
		b.WriteString(RenderHelp("enter", "confirm", "esc", "cancel"))
		return b.String()

	case ScreenConfirmReset:
		b.WriteString(BoxStyle.Render(WarningStyle.Render("Clear every check?")) + "\n")
		b.WriteString(RenderHelp("y", "yes", "n", "no"))
		return b.String()
	}

	if m.status != "" {
		if m.statusOK {
			b.WriteString(StatusBarStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(ErrorStyle.Render(m.status) + "\n")
		}
	}

	b.WriteString(RenderHelp(
		"enter", "check",
		"g", "jump",
		"r", "reset",
		"d", "details",
		"e", "export",
		"y", "copy",
		"q", "quit",
	))

	return b.String()
}
