package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatThread displays the active contact's chat and a composer.
type ChatThread struct {
	*tview.Flex
	theme    *ui.Theme
	store    *store.Store
	messages *tview.TextView
	composer *tview.InputField
	number   uint32
	name     string
	onSend   func(number uint32, text string)
	now      func() time.Time
}

// NewChatThread creates a new chat view.
func NewChatThread(theme *ui.Theme, st *store.Store) *ChatThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Chat ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Message (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	ct := &ChatThread{
		Flex:     flex,
		theme:    theme,
		store:    st,
		messages: messages,
		composer: composer,
		now:      time.Now,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || ct.onSend == nil {
			return
		}
		text := composer.GetText()
		if text == "" {
			return
		}
		ct.onSend(ct.number, text)
		composer.SetText("")
	})

	return ct
}

// Name implements Component.
func (ct *ChatThread) Name() string {
	if ct.name != "" {
		return ct.name
	}
	return "Chat"
}

// Hints implements Component.
func (ct *ChatThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// Show switches the view to contact number.
func (ct *ChatThread) Show(number uint32) {
	if ct.number != number {
		ct.composer.SetText("")
	}
	ct.number = number
	ct.Refresh()
}

// Number returns the contact shown.
func (ct *ChatThread) Number() uint32 { return ct.number }

// SetOnSend sets the callback fired when the composer submits.
func (ct *ChatThread) SetOnSend(fn func(number uint32, text string)) {
	ct.onSend = fn
}

// Refresh implements Component.
func (ct *ChatThread) Refresh() {
	c, ok := ct.store.Contact(ct.number)
	ct.messages.Clear()
	if !ok {
		ct.name = ""
		ct.messages.SetTitle(" Chat ")
		_, _ = fmt.Fprint(ct.messages, "\n  [::d]This friend is no longer in your list.[-:-:-]")
		return
	}

	ct.name = singleLine(c.DisplayName())
	presence := "offline"
	if c.Online {
		presence = c.Status.Label()
	}
	ct.messages.SetTitle(fmt.Sprintf(" %s [%s](%s)[-] ",
		tview.Escape(ct.name), ui.ColorName(ct.theme.PresenceColor(c.Online, c.Status)), presence))

	_, _ = fmt.Fprint(ct.messages, renderChat(c, ct.theme, ct.now()))
	ct.messages.ScrollToEnd()
}

// Messages returns the messages text view (for focus management).
func (ct *ChatThread) Messages() *tview.TextView {
	return ct.messages
}

// Composer returns the composer input field (for focus management).
func (ct *ChatThread) Composer() *tview.InputField {
	return ct.composer
}

// renderChat lays out c.Chat oldest first. Action messages are shown in
// third person, as "* name text".
func renderChat(c *model.Contact, theme *ui.Theme, now time.Time) string {
	in := ui.ColorName(theme.IncomingColor)
	out := ui.ColorName(theme.OutgoingColor)
	name := tview.Escape(singleLine(c.DisplayName()))

	var sb strings.Builder
	for i := len(c.Chat) - 1; i >= 0; i-- {
		m := c.Chat[i]
		sender, color := "You", out
		if m.IsIncoming {
			sender, color = name, in
		}
		ts := formatTimestamp(m.Time, now)
		body := tview.Escape(sanitizeForTerminal(m.Message))
		if m.IsAction {
			fmt.Fprintf(&sb, "[::d]%s[-:-:-] [%s::i]* %s %s[-:-:-]\n", ts, color, sender, body)
			continue
		}
		fmt.Fprintf(&sb, "[::d]%s[-:-:-] [%s::b]%s[-:-:-] %s\n", ts, color, sender, body)
	}
	return sb.String()
}
