package models

// AppState holds the application state
type AppState struct {
	Width    int
	Height   int
	ViewMode ViewMode
	Module   string

	// Notice is a one-line message shown in the status bar until the next key
	Notice string
}

// ViewMode identifies which overlay owns keyboard input
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
	SearchMode
	FilterMode
	ColumnsMode
	SavedFiltersMode
	SaveFilterPromptMode
	RowDetailMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:    80,
		Height:   24,
		ViewMode: NormalMode,
		Module:   "default",
	}
}

// SortDirection orders sorted rows
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortExpression parses "key" or "key:asc|desc"; the default direction is asc
func ParseSortExpression(expr string) (string, SortDirection) {
	key, dir := expr, SortAsc
	for i := len(expr) - 1; i >= 0; i-- {
		if expr[i] == ':' {
			key = expr[:i]
			if expr[i+1:] == string(SortDesc) {
				dir = SortDesc
			}
			break
		}
	}
	return key, dir
}
