package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is the number of hints per column.
const menuRows = 5

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint bar.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints column by column, menuRows per column.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, FormatHints(hints, ColorName(m.theme.MenuKeyColor), ColorName(m.theme.NumericKeyColor)))
}

// FormatHints lays hints out in columns of menuRows lines.
func FormatHints(hints []MenuHint, keyColor, numColor string) string {
	const cellWidth = 22
	rows := make([]strings.Builder, menuRows)
	for i, h := range hints {
		kc := keyColor
		if h.Numeric {
			kc = numColor
		}
		cell := fmt.Sprintf("<%s> %s", h.Key, h.Description)
		pad := cellWidth - len([]rune(cell))
		if pad < 1 {
			pad = 1
		}
		fmt.Fprintf(&rows[i%menuRows], "[%s::b]<%s>[-:-:-] %s%s",
			kc, tview.Escape(h.Key), tview.Escape(h.Description), strings.Repeat(" ", pad))
	}
	lines := make([]string, 0, menuRows)
	for i := range rows {
		if rows[i].Len() > 0 {
			lines = append(lines, strings.TrimRight(rows[i].String(), " "))
		}
	}
	return strings.Join(lines, "\n")
}
