package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// SetFilterMsg is sent when a criterion should be set; an empty value removes it
type SetFilterMsg struct {
	Key   string
	Value models.FilterValue
}

// ToggleLogicMsg is sent when AND/OR should flip
type ToggleLogicMsg struct{}

// ClearFiltersMsg is sent when every criterion should be removed
type ClearFiltersMsg struct{}

// CloseFilterPanelMsg is sent when the filter panel should close
type CloseFilterPanelMsg struct{}

type filterEditMode int

const (
	filterNavigate filterEditMode = iota
	filterOptions
	filterText
	filterRange
)

// FilterPanel edits the active filter set one field at a time
type FilterPanel struct {
	Width  int
	Height int
	Theme  theme.Theme

	fields []models.FilterField
	values models.FilterSet
	logic  models.FilterLogic

	currentIndex int
	editMode     filterEditMode
	optionIndex  int
	// pending holds multiselect toggles until they are applied
	pending []string

	textInput  textinput.Model
	rangeStart textinput.Model
	rangeEnd   textinput.Model
	rangeFocus int
}

// NewFilterPanel creates a filter panel
func NewFilterPanel(th theme.Theme) *FilterPanel {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		ti.Width = 30
		return ti
	}

	return &FilterPanel{
		Width:      70,
		Height:     24,
		Theme:      th,
		values:     models.FilterSet{},
		logic:      models.LogicAnd,
		textInput:  newInput("value"),
		rangeStart: newInput("YYYY-MM-DD"),
		rangeEnd:   newInput("YYYY-MM-DD"),
	}
}

// SetState refreshes the panel from the engine
func (fp *FilterPanel) SetState(fields []models.FilterField, values models.FilterSet, logic models.FilterLogic) {
	fp.fields = fields
	fp.values = values
	fp.logic = logic
	if fp.currentIndex >= len(fields) {
		fp.currentIndex = len(fields) - 1
	}
	if fp.currentIndex < 0 {
		fp.currentIndex = 0
	}
}

// Editing reports whether a field editor is open
func (fp *FilterPanel) Editing() bool {
	return fp.editMode != filterNavigate
}

func (fp *FilterPanel) current() (models.FilterField, bool) {
	if fp.currentIndex < 0 || fp.currentIndex >= len(fp.fields) {
		return models.FilterField{}, false
	}
	return fp.fields[fp.currentIndex], true
}

// Update handles keyboard input
func (fp *FilterPanel) Update(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	switch fp.editMode {
	case filterOptions:
		return fp.handleOptionsMode(msg)
	case filterText:
		return fp.handleTextMode(msg)
	case filterRange:
		return fp.handleRangeMode(msg)
	}
	return fp.handleNavigationMode(msg)
}

func (fp *FilterPanel) handleNavigationMode(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if fp.currentIndex > 0 {
			fp.currentIndex--
		}
	case "down", "j":
		if fp.currentIndex < len(fp.fields)-1 {
			fp.currentIndex++
		}
	case "enter", "l", "right":
		return fp, fp.beginEdit()
	case "d", "x", "backspace":
		if field, ok := fp.current(); ok {
			return fp, setFilter(field.Key, models.FilterValue{})
		}
	case "o":
		return fp, func() tea.Msg { return ToggleLogicMsg{} }
	case "X":
		return fp, func() tea.Msg { return ClearFiltersMsg{} }
	case "esc", "q", "f":
		return fp, func() tea.Msg { return CloseFilterPanelMsg{} }
	}
	return fp, nil
}

func (fp *FilterPanel) beginEdit() tea.Cmd {
	field, ok := fp.current()
	if !ok {
		return nil
	}
	value := fp.values[field.Key]

	switch field.Type {
	case models.FilterSelect, models.FilterMultiSelect:
		if len(field.Options) == 0 {
			fp.editMode = filterText
			fp.textInput.SetValue(value.String())
			return fp.textInput.Focus()
		}
		fp.editMode = filterOptions
		fp.optionIndex = 0
		fp.pending = nil
		if field.IsMulti() {
			fp.pending = append(fp.pending, value.Values...)
		}
		for i, opt := range field.Options {
			if opt.Value == value.Text {
				fp.optionIndex = i
			}
		}
		return nil
	case models.FilterDateRange:
		fp.editMode = filterRange
		fp.rangeStart.SetValue(value.Start)
		fp.rangeEnd.SetValue(value.End)
		fp.rangeFocus = 0
		fp.rangeEnd.Blur()
		return fp.rangeStart.Focus()
	default:
		fp.editMode = filterText
		fp.textInput.Placeholder = "value"
		if field.Type == models.FilterDate {
			fp.textInput.Placeholder = "YYYY-MM-DD"
		}
		if field.Placeholder != "" {
			fp.textInput.Placeholder = field.Placeholder
		}
		fp.textInput.SetValue(value.Text)
		fp.textInput.CursorEnd()
		return fp.textInput.Focus()
	}
}

func (fp *FilterPanel) handleOptionsMode(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	field, ok := fp.current()
	if !ok {
		fp.editMode = filterNavigate
		return fp, nil
	}

	switch msg.String() {
	case "esc":
		fp.editMode = filterNavigate
	case "up", "k":
		if fp.optionIndex > 0 {
			fp.optionIndex--
		}
	case "down", "j":
		if fp.optionIndex < len(field.Options)-1 {
			fp.optionIndex++
		}
	case " ", "space":
		if field.IsMulti() {
			fp.togglePending(field.Options[fp.optionIndex].Value)
		}
	case "enter":
		fp.editMode = filterNavigate
		if field.IsMulti() {
			return fp, setFilter(field.Key, models.MultiSelectValue(fp.pending...))
		}
		return fp, setFilter(field.Key, models.SelectValue(field.Options[fp.optionIndex].Value))
	}
	return fp, nil
}

func (fp *FilterPanel) togglePending(value string) {
	for i, v := range fp.pending {
		if v == value {
			fp.pending = append(fp.pending[:i], fp.pending[i+1:]...)
			return
		}
	}
	fp.pending = append(fp.pending, value)
}

func (fp *FilterPanel) handleTextMode(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	field, _ := fp.current()

	switch msg.String() {
	case "esc":
		fp.editMode = filterNavigate
		fp.textInput.Blur()
		return fp, nil
	case "enter":
		fp.editMode = filterNavigate
		fp.textInput.Blur()
		value := strings.TrimSpace(fp.textInput.Value())
		return fp, setFilter(field.Key, models.ValueForField(field, value))
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

func (fp *FilterPanel) handleRangeMode(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	field, _ := fp.current()

	switch msg.String() {
	case "esc":
		fp.editMode = filterNavigate
		fp.rangeStart.Blur()
		fp.rangeEnd.Blur()
		return fp, nil
	case "tab", "shift+tab":
		fp.rangeFocus = 1 - fp.rangeFocus
		if fp.rangeFocus == 0 {
			fp.rangeEnd.Blur()
			return fp, fp.rangeStart.Focus()
		}
		fp.rangeStart.Blur()
		return fp, fp.rangeEnd.Focus()
	case "enter":
		fp.editMode = filterNavigate
		fp.rangeStart.Blur()
		fp.rangeEnd.Blur()
		value := models.DateRangeValue(
			strings.TrimSpace(fp.rangeStart.Value()),
			strings.TrimSpace(fp.rangeEnd.Value()),
		)
		return fp, setFilter(field.Key, value)
	}

	var cmd tea.Cmd
	if fp.rangeFocus == 0 {
		fp.rangeStart, cmd = fp.rangeStart.Update(msg)
	} else {
		fp.rangeEnd, cmd = fp.rangeEnd.Update(msg)
	}
	return fp, cmd
}

func setFilter(key string, value models.FilterValue) tea.Cmd {
	return func() tea.Msg {
		return SetFilterMsg{Key: key, Value: value}
	}
}

// View renders the filter panel
func (fp *FilterPanel) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(fp.Theme.Background).
		Background(fp.Theme.Info).
		Padding(0, 1).
		Bold(true)
	logicStyle := lipgloss.NewStyle().
		Foreground(fp.Theme.LogicIndicator).
		Bold(true)
	sections = append(sections, titleStyle.Render("Filters")+"  "+logicStyle.Render("match "+string(fp.logic)))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fp.Theme.Muted).
		Padding(0, 1)

	var instructions string
	switch fp.editMode {
	case filterOptions:
		instructions = "↑↓ Move  Space: toggle  Enter: apply  Esc: back"
	case filterText:
		instructions = "Type value, Enter to apply (empty removes), Esc to go back"
	case filterRange:
		instructions = "Tab: switch bound  Enter: apply  Esc: back"
	default:
		instructions = "↑↓ Move  Enter: edit  d: remove  o: AND/OR  X: clear all  Esc: close"
	}
	sections = append(sections, instructionStyle.Render(instructions), "")

	if len(fp.fields) == 0 {
		sections = append(sections, instructionStyle.Render("No filterable fields configured"))
	}

	for i, field := range fp.fields {
		label := field.Label
		if label == "" {
			label = field.Key
		}

		value := "-"
		if v, ok := fp.values[field.Key]; ok && !v.IsEmpty() {
			value = fp.describe(field, v)
		}

		line := fmt.Sprintf(" %-18s %s", label, value)
		style := lipgloss.NewStyle().Padding(0, 1)
		if value != "-" {
			style = style.Foreground(fp.Theme.FilterChip)
		}
		if i == fp.currentIndex {
			style = style.Background(fp.Theme.Selection).Bold(true)
		}
		sections = append(sections, style.Render(line))

		if i == fp.currentIndex && fp.editMode != filterNavigate {
			sections = append(sections, fp.renderEditor(field))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fp.Theme.BorderFocused).
		Foreground(fp.Theme.Foreground).
		Width(fp.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}

func (fp *FilterPanel) describe(field models.FilterField, v models.FilterValue) string {
	switch v.Kind {
	case models.KindSelect:
		if v.IsList() {
			labels := make([]string, len(v.Values))
			for i, val := range v.Values {
				labels[i] = field.OptionLabel(val)
			}
			return strings.Join(labels, ", ")
		}
		return field.OptionLabel(v.Text)
	case models.KindText:
		return fmt.Sprintf("contains %q", v.Text)
	}
	return v.String()
}

func (fp *FilterPanel) renderEditor(field models.FilterField) string {
	indent := lipgloss.NewStyle().PaddingLeft(4)

	switch fp.editMode {
	case filterOptions:
		var lines []string
		for i, opt := range field.Options {
			mark := "( )"
			if field.IsMulti() {
				mark = "[ ]"
				for _, p := range fp.pending {
					if p == opt.Value {
						mark = "[x]"
					}
				}
			} else if fp.values[field.Key].Text == opt.Value {
				mark = "(•)"
			}
			style := lipgloss.NewStyle()
			if i == fp.optionIndex {
				style = style.Background(fp.Theme.Selection).Foreground(fp.Theme.Foreground)
			}
			lines = append(lines, style.Render(mark+" "+opt.Label))
		}
		return indent.Render(strings.Join(lines, "\n"))
	case filterRange:
		return indent.Render("From: " + fp.rangeStart.View() + "\nTo:   " + fp.rangeEnd.View())
	default:
		return indent.Render("> " + fp.textInput.View())
	}
}
