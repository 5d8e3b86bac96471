package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// AvatarURLFunc builds the avatar address of a public key.
type AvatarURLFunc func(publicKey string, token int64) string

// ContactInfo displays detailed information about a friend.
type ContactInfo struct {
	*tview.TextView
	theme  *ui.Theme
	store  *store.Store
	avatar AvatarURLFunc
	number uint32
	now    func() time.Time
}

// NewContactInfo creates a new contact info view.
func NewContactInfo(theme *ui.Theme, st *store.Store, avatar AvatarURLFunc) *ContactInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Friend Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ContactInfo{
		TextView: tv,
		theme:    theme,
		store:    st,
		avatar:   avatar,
		now:      time.Now,
	}
}

// Name implements Component.
func (ci *ContactInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ContactInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Chat"},
		{Key: "Esc", Description: "Back"},
	}
}

// Show switches the view to contact number.
func (ci *ContactInfo) Show(number uint32) {
	ci.number = number
	ci.Refresh()
}

// Number returns the contact shown.
func (ci *ContactInfo) Number() uint32 { return ci.number }

// Refresh implements Component.
func (ci *ContactInfo) Refresh() {
	ci.Clear()
	c, ok := ci.store.Contact(ci.number)
	if !ok {
		_, _ = fmt.Fprint(ci, "\n [::d]This friend is no longer in your list.[-:-:-]")
		return
	}

	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	presence := "offline"
	if c.Online {
		presence = c.Status.Label()
	}
	lastRead := formatTimestamp(c.LastMsgRead, ci.now())
	if lastRead == "" {
		lastRead = "-"
	}
	avatar := "-"
	if c.PublicKey != "" && ci.avatar != nil {
		avatar = ci.avatar(c.PublicKey, ci.store.AvatarToken())
	}

	_, _ = fmt.Fprintf(ci,
		"\n [%s::b]Name:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Number:[-:-:-]     [%s]%d[-]\n"+
			" [%s::b]Public key:[-:-:-] [%s]%s[-]\n"+
			" [%s::b]Presence:[-:-:-]   [%s]%s[-]\n"+
			" [%s::b]Status:[-:-:-]     [%s]%s[-]\n"+
			" [%s::b]Messages:[-:-:-]   [%s]%d (%d unread)[-]\n"+
			" [%s::b]Last read:[-:-:-]  [%s]%s[-]\n"+
			" [%s::b]Avatar:[-:-:-]     [%s]%s[-]",
		fg, ct, tview.Escape(singleLine(c.Name)),
		fg, ct, c.Number,
		fg, ct, tview.Escape(c.PublicKey),
		fg, ui.ColorName(ci.theme.PresenceColor(c.Online, c.Status)), presence,
		fg, ct, tview.Escape(singleLine(c.StatusMsg)),
		fg, ct, len(c.Chat), c.Unread(),
		fg, ct, lastRead,
		fg, ct, tview.Escape(avatar),
	)
	ci.SetTitle(fmt.Sprintf(" %s ", tview.Escape(singleLine(c.DisplayName()))))
}
