package views

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ProfileView shows the user's identity and the Tox ID as a QR code that a
// phone can scan to add the user as a friend.
type ProfileView struct {
	*tview.TextView
	theme *ui.Theme
	store *store.Store
	qrFor string
	qr    string
}

// NewProfileView creates a new profile view.
func NewProfileView(theme *ui.Theme, st *store.Store) *ProfileView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Profile ")
	tv.SetTitleColor(theme.TitleColor)

	return &ProfileView{
		TextView: tv,
		theme:    theme,
		store:    st,
	}
}

// Name implements Component.
func (pv *ProfileView) Name() string { return "Profile" }

// Hints implements Component.
func (pv *ProfileView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: ":name", Description: "Rename"},
		{Key: ":msg", Description: "Status message"},
		{Key: ":status", Description: "Presence"},
		{Key: "Esc", Description: "Back"},
	}
}

// Refresh implements Component.
func (pv *ProfileView) Refresh() {
	pv.Clear()
	p, ok := pv.store.Profile()
	if !ok {
		_, _ = fmt.Fprint(pv, "\n  [::d]Loading profile...[-:-:-]")
		return
	}

	fg := ui.ColorName(pv.theme.FgColor)
	ct := ui.ColorName(pv.theme.CounterColor)
	_, _ = fmt.Fprintf(pv,
		"\n  [%s::b]Name:[-:-:-]    [%s]%s[-]\n"+
			"  [%s::b]Status:[-:-:-]  [%s]%s[-]\n"+
			"  [%s::b]Message:[-:-:-] [%s]%s[-]\n"+
			"  [%s::b]Tox ID:[-:-:-]  [%s]%s[-]\n\n",
		fg, ct, tview.Escape(singleLine(p.Username)),
		fg, ui.ColorName(pv.theme.PresenceColor(true, p.Status)), p.Status.Label(),
		fg, ct, tview.Escape(singleLine(p.StatusMsg)),
		fg, ct, tview.Escape(p.ToxID),
	)

	if p.ToxID == "" {
		return
	}
	if pv.qrFor != p.ToxID {
		pv.qrFor = p.ToxID
		pv.qr = renderQR(p.ToxID)
	}
	_, _ = fmt.Fprintf(pv, "  Share your Tox ID:\n\n%s", pv.qr)
}

// renderQR converts a string to a compact QR code using Unicode half-block
// characters, two modules per cell row.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "  (QR generation failed: " + tview.Escape(err.Error()) + ")"
	}

	bitmap := qr.Bitmap()
	rows := len(bitmap)

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < rows && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
