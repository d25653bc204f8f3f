package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// RunRowActionMsg is sent when a row action is chosen
type RunRowActionMsg struct {
	ID    string
	Label string
}

// CloseRowDetailMsg is sent when the detail pane should close
type CloseRowDetailMsg struct{}

// RowDetail shows every column of one row, wrapped to the pane width
type RowDetail struct {
	Width     int
	MaxHeight int
	Theme     theme.Theme

	ID      string
	fields  []detailField
	actions []string

	scrollY      int
	contentLines []string
}

type detailField struct {
	label string
	value string
}

// NewRowDetail creates a row detail pane
func NewRowDetail(th theme.Theme) *RowDetail {
	return &RowDetail{
		Width:     80,
		MaxHeight: 20,
		Theme:     th,
	}
}

// SetRow shows row through the given columns
func (d *RowDetail) SetRow(row models.Row, columns []models.Column, actions []string) {
	d.ID = row.ID()
	d.fields = d.fields[:0]
	for _, col := range columns {
		label := col.Label
		if label == "" {
			label = col.Key
		}
		d.fields = append(d.fields, detailField{label: label, value: col.Cell(row)})
	}
	d.actions = actions
	d.scrollY = 0
	d.contentLines = nil
}

// Text renders the fields as "label: value" lines
func (d *RowDetail) Text() string {
	var b strings.Builder
	for _, f := range d.fields {
		b.WriteString(f.label)
		b.WriteString(": ")
		b.WriteString(f.value)
		b.WriteString("\n")
	}
	return b.String()
}

func (d *RowDetail) contentWidth() int {
	w := d.Width - 4
	if w < 10 {
		w = 10
	}
	return w
}

func (d *RowDetail) formatContent() {
	labelWidth := 0
	for _, f := range d.fields {
		if w := runewidth.StringWidth(f.label); w > labelWidth {
			labelWidth = w
		}
	}
	if labelWidth > d.contentWidth()/2 {
		labelWidth = d.contentWidth() / 2
	}

	valueWidth := d.contentWidth() - labelWidth - 2
	if valueWidth < 5 {
		valueWidth = 5
	}

	d.contentLines = nil
	for _, f := range d.fields {
		label := runewidth.FillRight(runewidth.Truncate(f.label, labelWidth, "…"), labelWidth)
		wrapped := wrapText(f.value, valueWidth)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		for i, line := range wrapped {
			if i == 0 {
				d.contentLines = append(d.contentLines, label+"  "+line)
			} else {
				d.contentLines = append(d.contentLines, strings.Repeat(" ", labelWidth+2)+line)
			}
		}
	}
}

// wrapText wraps text to fit within maxWidth display cells
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		current := ""
		currentWidth := 0
		for _, r := range line {
			rWidth := runewidth.RuneWidth(r)
			if currentWidth+rWidth > maxWidth {
				result = append(result, current)
				current = string(r)
				currentWidth = rWidth
			} else {
				current += string(r)
				currentWidth += rWidth
			}
		}
		if current != "" {
			result = append(result, current)
		}
	}
	return result
}

func (d *RowDetail) bodyHeight() int {
	h := d.MaxHeight - 6
	if h < 1 {
		h = 1
	}
	return h
}

// Update handles keyboard input
func (d *RowDetail) Update(msg tea.KeyMsg) (*RowDetail, tea.Cmd) {
	if d.contentLines == nil {
		d.formatContent()
	}

	switch key := msg.String(); key {
	case "esc", "q", "enter":
		return d, func() tea.Msg { return CloseRowDetailMsg{} }
	case "up", "k":
		if d.scrollY > 0 {
			d.scrollY--
		}
	case "down", "j":
		if d.scrollY < len(d.contentLines)-d.bodyHeight() {
			d.scrollY++
		}
	case "y":
		text := d.Text()
		return d, func() tea.Msg {
			if err := clipboard.WriteAll(text); err != nil {
				return CopyResultMsg{Err: err}
			}
			return CopyResultMsg{What: "row"}
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(d.actions) {
				id, label := d.ID, d.actions[idx]
				return d, func() tea.Msg { return RunRowActionMsg{ID: id, Label: label} }
			}
		}
	}
	return d, nil
}

// CopyResultMsg reports the outcome of a clipboard copy
type CopyResultMsg struct {
	What string
	Err  error
}

// View renders the pane
func (d *RowDetail) View() string {
	if d.contentLines == nil {
		d.formatContent()
	}

	titleStyle := lipgloss.NewStyle().Foreground(d.Theme.Info).Bold(true)
	header := titleStyle.Render(runewidth.Truncate("Row "+d.ID, d.contentWidth(), "…"))

	end := d.scrollY + d.bodyHeight()
	if end > len(d.contentLines) {
		end = len(d.contentLines)
	}

	parts := []string{header, ""}
	contentStyle := lipgloss.NewStyle().Foreground(d.Theme.Foreground)
	for i := d.scrollY; i < end; i++ {
		parts = append(parts, contentStyle.Render(d.contentLines[i]))
	}

	helpParts := []string{}
	if len(d.contentLines) > d.bodyHeight() {
		helpParts = append(helpParts, "↑↓: Scroll")
	}
	for i, a := range d.actions {
		if i >= 9 {
			break
		}
		helpParts = append(helpParts, fmt.Sprintf("%d: %s", i+1, a))
	}
	helpParts = append(helpParts, "y: Copy", "Esc: Close")

	helpStyle := lipgloss.NewStyle().Foreground(d.Theme.Muted).Italic(true)
	parts = append(parts, "", helpStyle.Render(strings.Join(helpParts, " │ ")))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Padding(0, 1).
		Width(d.Width).
		Render(strings.Join(parts, "\n"))
}
