package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/wtox/internal/notify"
	"github.com/rivo/tview"
)

// FlashMessage is the notice currently shown in the flash bar. ID is the
// notification centre entry it mirrors, if any.
type FlashMessage struct {
	ID      string
	Text    string
	Level   notify.Level
	Expires time.Time
}

// FlashModel holds the transient notice shown under the pages.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{}
}

// flashDuration is how long a notice of each level stays up.
func flashDuration(level notify.Level) time.Duration {
	switch level {
	case notify.LevelError:
		return 10 * time.Second
	case notify.LevelWarn:
		return 8 * time.Second
	default:
		return 5 * time.Second
	}
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) {
	f.Show(FlashMessage{Text: msg, Level: notify.LevelInfo})
}

// Show replaces the current message; a zero Expires picks the level default.
func (f *FlashModel) Show(m FlashMessage) {
	if m.Expires.IsZero() {
		m.Expires = time.Now().Add(flashDuration(m.Level))
	}
	f.mu.Lock()
	f.current = m
	f.mu.Unlock()
}

// FromNotification shows a notification centre entry.
func (f *FlashModel) FromNotification(n notify.Notification) {
	text := n.Body
	if n.Level == notify.LevelInfo && n.Title != "" {
		text = n.Title + ": " + n.Body
	}
	f.Show(FlashMessage{ID: n.ID, Text: text, Level: n.Level})
}

// Dismiss clears the current message and returns it.
func (f *FlashModel) Dismiss() (FlashMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.current
	f.current = FlashMessage{}
	return m, m.Text != "" && time.Now().Before(m.Expires)
}

// Get returns the current flash message, or nil if expired.
func (f *FlashModel) Get() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || time.Now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// FlashBar is the UI component that displays flash notifications.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders a flash message on the bar.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}

	color := ColorName(fb.theme.FlashInfoColor)
	switch msg.Level {
	case notify.LevelWarn:
		color = ColorName(fb.theme.FlashWarnColor)
	case notify.LevelError:
		color = ColorName(fb.theme.FlashErrColor)
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]  [::d](x to dismiss)[-:-:-]", color, tview.Escape(msg.Text))
}
