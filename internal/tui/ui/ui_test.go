package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHintsColumns(t *testing.T) {
	hints := make([]MenuHint, 0, 7)
	for i := 0; i < 7; i++ {
		hints = append(hints, MenuHint{Key: string(rune('a' + i)), Description: "do"})
	}
	hints[6].Numeric = true

	out := FormatHints(hints, "blue", "fuchsia")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, menuRows)
	assert.Contains(t, lines[0], "[blue::b]<a>")
	assert.Contains(t, lines[0], "[blue::b]<f>")
	assert.Contains(t, lines[1], "[fuchsia::b]<g>")
	assert.Equal(t, "", FormatHints(nil, "blue", "fuchsia"))
}

func TestFormatHintsEscapesText(t *testing.T) {
	out := FormatHints([]MenuHint{{Key: "x", Description: "[red]bad"}}, "blue", "fuchsia")
	assert.Contains(t, out, tview.Escape("[red]bad"))
}

func TestFlashLifecycle(t *testing.T) {
	f := NewFlashModel()
	assert.Nil(t, f.Get())

	f.FromNotification(notify.Notification{ID: "n1", Title: "Alice", Body: "hi", Level: notify.LevelInfo})
	got := f.Get()
	require.NotNil(t, got)
	assert.Equal(t, "Alice: hi", got.Text)
	assert.Equal(t, "n1", got.ID)

	m, ok := f.Dismiss()
	assert.True(t, ok)
	assert.Equal(t, "n1", m.ID)
	assert.Nil(t, f.Get())

	_, ok = f.Dismiss()
	assert.False(t, ok)
}

func TestFlashNoticeUsesBody(t *testing.T) {
	f := NewFlashModel()
	f.FromNotification(notify.Notification{ID: "n2", Title: "Send failed", Body: "offline", Level: notify.LevelWarn})
	assert.Equal(t, "offline", f.Get().Text)
}

func TestFlashExpires(t *testing.T) {
	f := NewFlashModel()
	f.Show(FlashMessage{Text: "old", Expires: time.Now().Add(-time.Second)})
	assert.Nil(t, f.Get())

	f.Show(FlashMessage{Text: "err", Level: notify.LevelError})
	got := f.Get()
	require.NotNil(t, got)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), got.Expires, time.Second)
}

type page struct {
	name      string
	refreshed int
}

func (p *page) Name() string      { return p.name }
func (p *page) Hints() []MenuHint { return nil }
func (p *page) Refresh()          { p.refreshed++ }

func TestPagesStack(t *testing.T) {
	p := NewPages()
	root, chat, info := &page{name: "Friends"}, &page{name: "Alice"}, &page{name: "Details"}
	p.Add("contacts", tview.NewBox(), root)
	p.Add("chat", tview.NewBox(), chat)
	p.Add("details", tview.NewBox(), info)

	var trail []string
	p.SetOnChange(func(_ Component, stack []string) { trail = stack })

	p.Reset("contacts")
	p.Push("chat")
	p.Push("details")
	assert.Equal(t, []string{"Friends", "Alice", "Details"}, trail)
	assert.True(t, p.Contains("chat"))

	assert.Equal(t, "details", p.Pop())
	assert.Equal(t, "chat", p.Current())
	assert.Equal(t, []string{"Friends", "Alice"}, trail)
	assert.Equal(t, 2, chat.refreshed)

	p.Push("chat")
	assert.Equal(t, []string{"Friends", "Alice"}, trail, "pushing the top page again only refreshes")
	assert.Equal(t, 3, chat.refreshed)

	assert.Equal(t, "chat", p.Pop())
	assert.Equal(t, "", p.Pop(), "root is never popped")
	assert.Equal(t, "contacts", p.Current())
}

func TestPromptSubmitRecordsCommandsOnly(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	var got []string
	p.SetOnSubmit(func(mode PromptMode, text string) {
		got = append(got, text)
	})
	submit := func(text string) {
		p.SetText(text)
		p.InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	}

	p.Activate(PromptCommand)
	submit("status away")
	p.Activate(PromptFilter)
	submit("ali")

	assert.Equal(t, []string{"status away", "ali"}, got)
	assert.Equal(t, 1, p.history.Len(), "filters are not recorded")
	assert.Equal(t, "", p.GetText(), "submit clears the line")
}

func TestColorName(t *testing.T) {
	th := DefaultTheme()
	assert.Equal(t, "black", ColorName(th.BgColor))
	assert.Equal(t, th.OfflineColor, th.PresenceColor(false, "AWAY"))
	assert.Equal(t, th.AwayColor, th.PresenceColor(true, "AWAY"))
	assert.Equal(t, th.OnlineColor, th.PresenceColor(true, "NONE"))
}

func TestSessionInfoRows(t *testing.T) {
	rows := (&SessionData{Session: "home", Status: "Away", Online: 1, Contacts: 3, Unread: 4}).rows()
	require.Len(t, rows, 5)
	assert.Equal(t, "- (Away)", rows[2][1], "missing name shows a dash")
	assert.Equal(t, "1/3 online, 4 unread", rows[4][1])
}
