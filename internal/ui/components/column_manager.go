package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// ColumnAction names a column manager command
type ColumnAction int

const (
	ColumnToggle ColumnAction = iota
	ColumnMoveUp
	ColumnMoveDown
	ColumnDrop
	ColumnSetWidth
	ColumnShowAll
	ColumnReset
)

// ColumnActionMsg asks the owner to change column preferences
type ColumnActionMsg struct {
	Action ColumnAction
	Key    string
	// Target is the column a dragged column was dropped on
	Target string
	Width  string
}

// CloseColumnManagerMsg is sent when the dialog should close
type CloseColumnManagerMsg struct{}

// ColumnManager lists every column with its visibility, order and width
type ColumnManager struct {
	Width  int
	Height int
	Theme  theme.Theme

	columns  []listview.ColumnState
	selected int
	// dragging is the key picked up with "m"
	dragging string

	editingWidth bool
	widthInput   textinput.Model
}

// NewColumnManager creates a column manager dialog
func NewColumnManager(th theme.Theme) *ColumnManager {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "e.g. 24 or 200px, empty resets"
	ti.CharLimit = 16
	ti.Width = 30

	return &ColumnManager{
		Width:      60,
		Height:     24,
		Theme:      th,
		widthInput: ti,
	}
}

// SetColumns refreshes the listed columns, keeping the cursor on the same key
func (cm *ColumnManager) SetColumns(columns []listview.ColumnState) {
	key := cm.SelectedKey()
	cm.columns = columns
	for i, c := range columns {
		if c.Key == key {
			cm.selected = i
			return
		}
	}
	if cm.selected >= len(columns) {
		cm.selected = len(columns) - 1
	}
	if cm.selected < 0 {
		cm.selected = 0
	}
}

// SelectedKey returns the key under the cursor
func (cm *ColumnManager) SelectedKey() string {
	if cm.selected < 0 || cm.selected >= len(cm.columns) {
		return ""
	}
	return cm.columns[cm.selected].Key
}

// Dragging returns the key picked up for a drag, if any
func (cm *ColumnManager) Dragging() string {
	return cm.dragging
}

// Update handles keyboard input
func (cm *ColumnManager) Update(msg tea.KeyMsg) (*ColumnManager, tea.Cmd) {
	if cm.editingWidth {
		return cm.handleWidthMode(msg)
	}

	key := cm.SelectedKey()

	switch msg.String() {
	case "esc", "q", "c":
		if cm.dragging != "" {
			cm.dragging = ""
			return cm, nil
		}
		return cm, func() tea.Msg { return CloseColumnManagerMsg{} }
	case "up", "k":
		if cm.selected > 0 {
			cm.selected--
		}
	case "down", "j":
		if cm.selected < len(cm.columns)-1 {
			cm.selected++
		}
	case " ", "space", "enter":
		if key != "" {
			return cm, columnAction(ColumnActionMsg{Action: ColumnToggle, Key: key})
		}
	case "K", "shift+up":
		if key != "" {
			return cm, columnAction(ColumnActionMsg{Action: ColumnMoveUp, Key: key})
		}
	case "J", "shift+down":
		if key != "" {
			return cm, columnAction(ColumnActionMsg{Action: ColumnMoveDown, Key: key})
		}
	case "m":
		if key == "" {
			return cm, nil
		}
		if cm.dragging == "" {
			cm.dragging = key
			return cm, nil
		}
		dragged := cm.dragging
		cm.dragging = ""
		return cm, columnAction(ColumnActionMsg{Action: ColumnDrop, Key: dragged, Target: key})
	case "w":
		if key != "" {
			cm.editingWidth = true
			cm.widthInput.SetValue(cm.columns[cm.selected].Width)
			cm.widthInput.CursorEnd()
			return cm, cm.widthInput.Focus()
		}
	case "a":
		return cm, columnAction(ColumnActionMsg{Action: ColumnShowAll})
	case "r":
		return cm, columnAction(ColumnActionMsg{Action: ColumnReset})
	}
	return cm, nil
}

func (cm *ColumnManager) handleWidthMode(msg tea.KeyMsg) (*ColumnManager, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cm.editingWidth = false
		cm.widthInput.Blur()
		return cm, nil
	case "enter":
		cm.editingWidth = false
		cm.widthInput.Blur()
		return cm, columnAction(ColumnActionMsg{
			Action: ColumnSetWidth,
			Key:    cm.SelectedKey(),
			Width:  strings.TrimSpace(cm.widthInput.Value()),
		})
	}

	var cmd tea.Cmd
	cm.widthInput, cmd = cm.widthInput.Update(msg)
	return cm, cmd
}

func columnAction(msg ColumnActionMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the dialog
func (cm *ColumnManager) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(cm.Theme.Background).
		Background(cm.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Columns"))

	instrStyle := lipgloss.NewStyle().
		Foreground(cm.Theme.Muted).
		Padding(0, 1)
	instructions := "Space: show/hide  K/J: move  m: drag  w: width  a: show all  r: reset  Esc: close"
	if cm.dragging != "" {
		instructions = fmt.Sprintf("Dragging %q: move to a column and press m to drop, Esc to cancel", cm.dragging)
	}
	sections = append(sections, instrStyle.Render(instructions), "")

	for i, col := range cm.columns {
		check := "[ ]"
		if col.Visible {
			check = "[x]"
		}

		label := col.Label
		if label == "" {
			label = col.Key
		}
		line := fmt.Sprintf("%s %-24s", check, label)
		if col.Width != "" {
			line += "  " + col.Width
		}

		style := lipgloss.NewStyle().Padding(0, 1)
		if !col.Visible {
			style = style.Foreground(cm.Theme.Muted)
		}
		if col.Key == cm.dragging {
			style = style.Foreground(cm.Theme.DragPlaceholder).Italic(true)
		}
		if i == cm.selected {
			style = style.Background(cm.Theme.Selection).Bold(true)
		}
		sections = append(sections, style.Render(line))
	}

	if cm.editingWidth {
		sections = append(sections, "", "Width: "+cm.widthInput.View())
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cm.Theme.BorderFocused).
		Foreground(cm.Theme.Foreground).
		Width(cm.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
