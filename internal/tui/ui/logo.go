package ui

import (
	"strings"

	"github.com/rivo/tview"
)

var logoArt = []string{
	"╦ ╦╔╦╗╔═╗═╗ ╦",
	"║║║ ║ ║ ║╔╩╦╝",
	"╚╩╝ ╩ ╚═╝╩ ╚═",
}

const logoTagline = "Tox in a terminal"

// NewLogo returns the static banner shown at the right of the header.
func NewLogo(theme *Theme) *tview.TextView {
	var b strings.Builder
	art := ColorName(theme.TitleColor)
	for _, line := range logoArt {
		b.WriteString("[" + art + "::b]" + line + "[-:-:-]\n")
	}
	b.WriteString("[" + ColorName(theme.FgColor) + "]" + logoTagline + "[-:-:-]")

	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)
	tv.SetText(b.String())
	return tv
}
