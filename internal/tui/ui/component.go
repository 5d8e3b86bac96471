package ui

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// Component is implemented by every page of the TUI.
type Component interface {
	// Name is the breadcrumb label.
	Name() string
	// Hints lists the page-specific shortcuts.
	Hints() []MenuHint
	// Refresh re-renders from the current mirrors. Called on the UI goroutine.
	Refresh()
}
