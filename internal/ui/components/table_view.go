package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// TableColumn is a rendered column header
type TableColumn struct {
	Key   string
	Label string
	// Width is a fixed cell width; 0 sizes the column from its content
	Width int
	Sort  models.SortDirection
}

// TableView displays list rows with virtual scrolling
type TableView struct {
	Columns []TableColumn
	Rows    [][]string
	IDs     []string
	Width   int
	Height  int
	Theme   theme.Theme

	// Checked marks selected row ids; nil hides the checkbox column
	Checked map[string]bool

	MaxCellWidth int
	MinCellWidth int

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int
	// TotalRows is the row count before filtering
	TotalRows int

	// Column widths (calculated)
	ColumnWidths []int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Columns:      []TableColumn{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
		Theme:        th,
		MaxCellWidth: 50,
		MinCellWidth: 10,
	}
}

// ParseWidth converts a stored width hint into terminal cells.
// "24" and "24ch" are cells; "200px" assumes 8px per cell.
func ParseWidth(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	divisor := 1
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
		divisor = 8
	case strings.HasSuffix(s, "ch"):
		s = strings.TrimSuffix(s, "ch")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	n /= divisor
	if n < 1 {
		n = 1
	}
	return n, true
}

// SetData replaces the table content and keeps the cursor in range
func (tv *TableView) SetData(columns []TableColumn, ids []string, rows [][]string, totalRows int) {
	tv.Columns = columns
	tv.IDs = ids
	tv.Rows = rows
	tv.TotalRows = totalRows
	tv.calculateColumnWidths()

	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	if tv.TopRow > tv.SelectedRow {
		tv.TopRow = tv.SelectedRow
	}
}

// SelectedID returns the id of the row under the cursor
func (tv *TableView) SelectedID() string {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.IDs) {
		return ""
	}
	return tv.IDs[tv.SelectedRow]
}

// calculateColumnWidths calculates optimal column widths
func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))

	for i, col := range tv.Columns {
		if col.Width > 0 {
			tv.ColumnWidths[i] = col.Width
			continue
		}

		width := runewidth.StringWidth(tv.headerLabel(col))
		for _, row := range tv.Rows {
			if i < len(row) {
				if w := runewidth.StringWidth(row[i]); w > width {
					width = w
				}
			}
		}

		if tv.MaxCellWidth > 0 && width > tv.MaxCellWidth {
			width = tv.MaxCellWidth
		}
		if width < tv.MinCellWidth {
			width = tv.MinCellWidth
		}
		tv.ColumnWidths[i] = width
	}
}

func (tv *TableView) headerLabel(col TableColumn) string {
	switch col.Sort {
	case models.SortAsc:
		return col.Label + " ▲"
	case models.SortDesc:
		return col.Label + " ▼"
	}
	return col.Label
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(tv.Theme.Muted).Render("No columns visible")
	}

	var b strings.Builder

	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	// Header + separator + status
	tv.VisibleRows = tv.Height - 3
	if tv.VisibleRows < 1 {
		tv.VisibleRows = 1
	}

	if len(tv.Rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(tv.Theme.Muted).Italic(true).Render(" No matching rows"))
	}

	endRow := tv.TopRow + tv.VisibleRows
	if endRow > len(tv.Rows) {
		endRow = len(tv.Rows)
	}

	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString(tv.renderRow(i))
		if i < endRow-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(tv.renderStatus())

	return b.String()
}

func (tv *TableView) checkboxWidth() int {
	if tv.Checked == nil {
		return 0
	}
	return 4
}

func (tv *TableView) renderHeader() string {
	var parts []string
	for i, col := range tv.Columns {
		parts = append(parts, pad(tv.headerLabel(col), tv.ColumnWidths[i]))
	}

	prefix := ""
	if tv.Checked != nil {
		prefix = "[ ] "
		if len(tv.IDs) > 0 && tv.countChecked() == len(tv.IDs) {
			prefix = "[x] "
		}
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Background(tv.Theme.TableRowOdd)
	return headerStyle.Render(" " + prefix + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator() string {
	parts := make([]string, 0, len(tv.ColumnWidths))
	for _, width := range tv.ColumnWidths {
		parts = append(parts, strings.Repeat("─", width))
	}
	separatorStyle := lipgloss.NewStyle().Foreground(tv.Theme.Border)
	return separatorStyle.Render("─" + strings.Repeat("─", tv.checkboxWidth()) + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(i int) string {
	row := tv.Rows[i]
	parts := make([]string, 0, len(tv.ColumnWidths))
	for c, width := range tv.ColumnWidths {
		cell := ""
		if c < len(row) {
			cell = row[c]
		}
		parts = append(parts, pad(cell, width))
	}

	prefix := ""
	checked := false
	if tv.Checked != nil && i < len(tv.IDs) {
		checked = tv.Checked[tv.IDs[i]]
		prefix = "[ ] "
		if checked {
			prefix = "[x] "
		}
	}

	line := " " + prefix + strings.Join(parts, " │ ") + " "

	style := lipgloss.NewStyle()
	switch {
	case i == tv.SelectedRow:
		style = style.Background(tv.Theme.TableRowSelected).Foreground(lipgloss.Color("15")).Bold(true)
	case checked:
		style = style.Foreground(tv.Theme.TableRowChecked)
	case i%2 == 1:
		style = style.Background(tv.Theme.TableRowOdd)
	}
	return style.Render(line)
}

func (tv *TableView) countChecked() int {
	n := 0
	for _, id := range tv.IDs {
		if tv.Checked[id] {
			n++
		}
	}
	return n
}

func (tv *TableView) renderStatus() string {
	start, end := 0, 0
	if len(tv.Rows) > 0 {
		start = tv.TopRow + 1
		end = tv.TopRow + tv.VisibleRows
		if end > len(tv.Rows) {
			end = len(tv.Rows)
		}
	}

	showing := fmt.Sprintf(" %d-%d of %d rows", start, end, len(tv.Rows))
	if tv.TotalRows != len(tv.Rows) {
		showing += fmt.Sprintf(" (%d total)", tv.TotalRows)
	}
	if n := len(tv.Checked); n > 0 {
		showing += fmt.Sprintf(" · %d selected", n)
	}

	return lipgloss.NewStyle().
		Foreground(tv.Theme.Muted).
		Italic(true).
		Render(showing)
}

// pad fits s into exactly width display cells
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// MoveSelection moves the cursor up or down
func (tv *TableView) MoveSelection(delta int) {
	tv.SelectedRow += delta

	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}

	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.VisibleRows > 0 && tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
}

// PageUp moves the cursor one screen up
func (tv *TableView) PageUp() {
	tv.SelectedRow -= tv.VisibleRows
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.TopRow = tv.SelectedRow
}

// PageDown moves the cursor one screen down
func (tv *TableView) PageDown() {
	tv.SelectedRow += tv.VisibleRows
	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.TopRow = tv.SelectedRow
	if tv.TopRow+tv.VisibleRows > len(tv.Rows) {
		tv.TopRow = len(tv.Rows) - tv.VisibleRows
		if tv.TopRow < 0 {
			tv.TopRow = 0
		}
	}
}

// GotoTop moves the cursor to the first row
func (tv *TableView) GotoTop() {
	tv.SelectedRow = 0
	tv.TopRow = 0
}

// GotoBottom moves the cursor to the last row
func (tv *TableView) GotoBottom() {
	tv.SelectedRow = len(tv.Rows) - 1
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	if tv.TopRow < 0 {
		tv.TopRow = 0
	}
}
