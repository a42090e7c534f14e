package tui

// Key binding constants for TUI navigation and interaction
const (
	KeyEnter = "enter"
	KeyEsc   = "esc"
	KeyCtrlC = "ctrl+c"
	KeySpace = " "
)

// UI element constants
const (
	CheckboxUnchecked = "[ ]"
	CheckboxChecked   = "[x]"
	MarkerActionable  = ">"
	MarkerHighlight   = "*"
	Ellipsis          = "…"
	DefaultExportPath = "ticklist-state.json"
)

// Layout constants
const (
	// rowPrefixWidth is marker, space, checkbox and space before the index
	rowPrefixWidth = 6
	// minTextWidth keeps item text readable on very narrow terminals
	minTextWidth = 10
	// framePadding is the horizontal padding of BaseStyle on both sides
	framePadding = 4
)
