package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs shows the page stack on the left and the push channel state on
// the right.
type Crumbs struct {
	*tview.TextView
	theme *Theme
	stack []string
	state string
}

// NewCrumbs creates a new breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update replaces the trail.
func (c *Crumbs) Update(stack []string) {
	c.stack = stack
	c.render()
}

// SetState replaces the connection badge.
func (c *Crumbs) SetState(state string) {
	c.state = state
	c.render()
}

func (c *Crumbs) render() {
	c.Clear()
	parts := make([]string, 0, len(c.stack))
	for i, name := range c.stack {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == len(c.stack)-1 {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]",
			ColorName(fg), ColorName(bg), attr, tview.Escape(name)))
	}
	line := strings.Join(parts, " > ")
	if c.state != "" {
		line += fmt.Sprintf("  [%s]● %s[-]", ColorName(c.theme.CounterColor), tview.Escape(c.state))
	}
	_, _ = fmt.Fprint(c, line)
}
