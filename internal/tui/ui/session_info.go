package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// SessionData is what the header shows about the running session.
type SessionData struct {
	Session  string
	Server   string
	Username string
	Status   string
	Channel  string
	Contacts int
	Online   int
	Unread   int
}

// rows lists the header lines as label/value pairs.
func (d *SessionData) rows() [][2]string {
	name := d.Username
	if name == "" {
		name = "-"
	}
	if d.Status != "" {
		name += " (" + d.Status + ")"
	}
	return [][2]string{
		{"Session", d.Session},
		{"Server", d.Server},
		{"Name", name},
		{"Push", d.Channel},
		{"Friends", fmt.Sprintf("%d/%d online, %d unread", d.Online, d.Contacts, d.Unread)},
	}
}

// SessionInfo is the left header panel.
type SessionInfo struct {
	*tview.TextView
	labelColor string
	valueColor string
}

func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)
	return &SessionInfo{
		TextView:   tv,
		labelColor: ColorName(theme.FgColor),
		valueColor: ColorName(theme.CounterColor),
	}
}

// Update replaces the panel content. A nil data clears it.
func (si *SessionInfo) Update(data *SessionData) {
	si.Clear()
	if data == nil {
		return
	}
	var b strings.Builder
	for i, row := range data.rows() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s::b]%-8s[-:-:-] [%s]%s[-]",
			si.labelColor, row[0]+":", si.valueColor, tview.Escape(row[1]))
	}
	si.SetText(b.String())
}
