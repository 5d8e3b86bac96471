package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpSection is one titled block of the help page.
type HelpSection struct {
	Title string
	Hints []ui.MenuHint
}

// HelpView displays key binding and command reference.
type HelpView struct {
	*tview.TextView
	theme    *ui.Theme
	sections []HelpSection
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	return &HelpView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// SetSections replaces the content.
func (hv *HelpView) SetSections(sections []HelpSection) {
	hv.sections = sections
	hv.Refresh()
}

// Refresh implements Component.
func (hv *HelpView) Refresh() {
	hv.Clear()
	_, _ = fmt.Fprint(hv, renderHelp(hv.sections, ui.ColorName(hv.theme.MenuKeyColor)))
	hv.ScrollToBeginning()
}

func renderHelp(sections []HelpSection, keyColor string) string {
	width := 0
	for _, s := range sections {
		for _, h := range s.Hints {
			if n := len([]rune(h.Key)); n > width {
				width = n
			}
		}
	}

	var sb strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&sb, "\n  [::b]%s[-:-:-]\n\n", tview.Escape(s.Title))
		for _, h := range s.Hints {
			pad := strings.Repeat(" ", width-len([]rune(h.Key))+2)
			fmt.Fprintf(&sb, "  [%s]%s[-:-:-]%s%s\n", keyColor, tview.Escape(h.Key), pad, tview.Escape(h.Description))
		}
	}
	return sb.String()
}
