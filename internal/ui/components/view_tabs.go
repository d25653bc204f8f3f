package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// ViewTab is one configured list view
type ViewTab struct {
	Module string
	Title  string
	// Count is the filtered row count, -1 until loaded
	Count int
}

// ViewTabs switches between configured list views
type ViewTabs struct {
	tabs      []ViewTab
	activeIdx int
	Theme     theme.Theme
}

// NewViewTabs creates a tab bar
func NewViewTabs(th theme.Theme) *ViewTabs {
	return &ViewTabs{Theme: th}
}

// SetViews replaces the tabs; titles falls back to the module name
func (vt *ViewTabs) SetViews(modules []string, titles map[string]string) {
	vt.tabs = make([]ViewTab, len(modules))
	for i, m := range modules {
		title := titles[m]
		if title == "" {
			title = m
		}
		vt.tabs[i] = ViewTab{Module: m, Title: title, Count: -1}
	}
	vt.activeIdx = 0
}

// Activate selects the tab for module
func (vt *ViewTabs) Activate(module string) bool {
	for i, t := range vt.tabs {
		if t.Module == module {
			vt.activeIdx = i
			return true
		}
	}
	return false
}

// Active returns the active module, or "" with no tabs
func (vt *ViewTabs) Active() string {
	if len(vt.tabs) == 0 {
		return ""
	}
	return vt.tabs[vt.activeIdx].Module
}

// SetCount records the filtered row count shown next to a tab title
func (vt *ViewTabs) SetCount(module string, count int) {
	for i := range vt.tabs {
		if vt.tabs[i].Module == module {
			vt.tabs[i].Count = count
		}
	}
}

// NextTab switches to the next tab
func (vt *ViewTabs) NextTab() string {
	if len(vt.tabs) > 0 {
		vt.activeIdx = (vt.activeIdx + 1) % len(vt.tabs)
	}
	return vt.Active()
}

// PrevTab switches to the previous tab
func (vt *ViewTabs) PrevTab() string {
	if len(vt.tabs) > 0 {
		vt.activeIdx = (vt.activeIdx - 1 + len(vt.tabs)) % len(vt.tabs)
	}
	return vt.Active()
}

// TabCount returns the number of tabs
func (vt *ViewTabs) TabCount() int {
	return len(vt.tabs)
}

// RenderTabBar renders the tab bar
func (vt *ViewTabs) RenderTabBar(width int) string {
	if len(vt.tabs) < 2 {
		return ""
	}

	maxLabel := width / len(vt.tabs)
	if maxLabel < 12 {
		maxLabel = 12
	}

	var tabViews []string
	for i, tab := range vt.tabs {
		label := tab.Title
		if tab.Count >= 0 {
			label = fmt.Sprintf("%s (%d)", tab.Title, tab.Count)
		}
		label = runewidth.Truncate(label, maxLabel-2, "…")

		style := lipgloss.NewStyle().Padding(0, 1)
		if i == vt.activeIdx {
			style = style.
				Foreground(vt.Theme.Background).
				Background(vt.Theme.Info).
				Bold(true)
		} else {
			style = style.
				Foreground(vt.Theme.Foreground).
				Background(vt.Theme.Selection)
		}
		tabViews = append(tabViews, style.Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabViews...)
}
