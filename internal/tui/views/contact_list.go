package views

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactList is the main friend list view.
type ContactList struct {
	*tview.Table
	theme   *ui.Theme
	store   *store.Store
	filter  string
	visible []uint32
	now     func() time.Time
}

// NewContactList creates a new contact list table.
func NewContactList(theme *ui.Theme, st *store.Store) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Friends ")
	table.SetTitleColor(theme.TitleColor)

	return &ContactList{
		Table: table,
		theme: theme,
		store: st,
		now:   time.Now,
	}
}

// Name implements Component.
func (cl *ContactList) Name() string { return "Friends" }

// Hints implements Component.
func (cl *ContactList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Chat"},
		{Key: "d", Description: "Details"},
		{Key: "/", Description: "Filter"},
		{Key: "0", Description: "Clear filter", Numeric: true},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Refresh implements Component.
func (cl *ContactList) Refresh() {
	cl.render(cl.store.Contacts())
}

// SetFilter sets the active filter text and re-renders.
func (cl *ContactList) SetFilter(filter string) {
	cl.filter = filter
	cl.Refresh()
}

// Filter returns the active filter text.
func (cl *ContactList) Filter() string { return cl.filter }

func (cl *ContactList) matches(c *model.Contact) bool {
	if cl.filter == "" {
		return true
	}
	return containsFold(c.DisplayName(), cl.filter) ||
		containsFold(c.StatusMsg, cl.filter) ||
		containsFold(strconv.FormatUint(uint64(c.Number), 10), cl.filter)
}

func (cl *ContactList) render(contacts []*model.Contact) {
	selected, hadSelection := cl.Selected()
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" ", 0},
		{" NAME", 1},
		{" STATUS", 2},
		{" LAST", 0},
		{" UNREAD", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	now := cl.now()
	cl.visible = cl.visible[:0]
	row := 1
	for _, c := range contacts {
		if !cl.matches(c) {
			continue
		}
		cl.visible = append(cl.visible, c.Number)

		name := singleLine(c.DisplayName())
		nameColor := cl.theme.FgColor
		if c.Notify {
			name = "* " + name
			nameColor = cl.theme.UnreadColor
		}
		last := ""
		if len(c.Chat) > 0 {
			last = formatTimestamp(c.Chat[0].Time, now)
		}
		unread := ""
		if n := c.Unread(); n > 0 {
			unread = strconv.Itoa(n)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" ●").SetTextColor(cl.theme.PresenceColor(c.Online, c.Status)))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(truncate(name, 32))).SetExpansion(1).SetTextColor(nameColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(singleLine(c.StatusMsg))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(last).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 4, tview.NewTableCell(unread).SetTextColor(cl.theme.UnreadColor).SetAlign(tview.AlignRight))
		row++
	}

	if hadSelection {
		cl.Select(cl.rowOf(selected), 0)
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Friends (%d/%d) filter: %s ", len(cl.visible), len(contacts), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Friends (%d) ", len(contacts)))
	}
}

func (cl *ContactList) rowOf(number uint32) int {
	for i, n := range cl.visible {
		if n == number {
			return i + 1
		}
	}
	return 1
}

// Selected returns the number of the contact under the cursor.
func (cl *ContactList) Selected() (uint32, bool) {
	row, _ := cl.GetSelection()
	return cl.ByIndex(row)
}

// ByIndex returns the Nth visible contact (1-based).
func (cl *ContactList) ByIndex(n int) (uint32, bool) {
	if n < 1 || n > len(cl.visible) {
		return 0, false
	}
	return cl.visible[n-1], true
}
