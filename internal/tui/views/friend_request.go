package views

import (
	"strings"

	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

// DefaultRequestMessage is prefilled in the add-friend form and used by
// commands that omit a message.
const DefaultRequestMessage = "Hi, let's be friends on Tox."

// FriendRequestForm is the add-friend form. The input is discarded once
// submitted or cancelled.
type FriendRequestForm struct {
	*tview.Form
	theme    *ui.Theme
	id       *tview.InputField
	message  *tview.InputField
	onSubmit func(req model.FriendRequest)
	onCancel func()
}

// NewFriendRequestForm creates the add-friend form.
func NewFriendRequestForm(theme *ui.Theme) *FriendRequestForm {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Add Friend ")
	form.SetTitleColor(theme.TitleColor)
	form.SetLabelColor(theme.FgColor)
	form.SetFieldBackgroundColor(theme.TableHeaderBg)
	form.SetFieldTextColor(theme.CounterColor)
	form.SetButtonBackgroundColor(theme.CrumbInactiveBg)
	form.SetButtonTextColor(theme.CrumbInactiveFg)

	fr := &FriendRequestForm{Form: form, theme: theme}
	fr.id = tview.NewInputField().SetLabel("Tox ID").SetFieldWidth(0)
	fr.message = tview.NewInputField().SetLabel("Message").SetFieldWidth(0)

	form.AddFormItem(fr.id).
		AddFormItem(fr.message).
		AddButton("Send", fr.submit).
		AddButton("Cancel", func() {
			if fr.onCancel != nil {
				fr.onCancel()
			}
		})
	fr.Reset()
	return fr
}

// Name implements Component.
func (fr *FriendRequestForm) Name() string { return "Add Friend" }

// Hints implements Component.
func (fr *FriendRequestForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Press button"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Refresh implements Component.
func (fr *FriendRequestForm) Refresh() {}

// SetOnSubmit sets the callback of the Send button.
func (fr *FriendRequestForm) SetOnSubmit(fn func(req model.FriendRequest)) { fr.onSubmit = fn }

// SetOnCancel sets the callback of the Cancel button.
func (fr *FriendRequestForm) SetOnCancel(fn func()) { fr.onCancel = fn }

// Reset clears the input and moves focus to the first field.
func (fr *FriendRequestForm) Reset() {
	fr.id.SetText("")
	fr.message.SetText(DefaultRequestMessage)
	fr.SetFocus(0)
}

func (fr *FriendRequestForm) submit() {
	req := model.FriendRequest{
		FriendID: strings.TrimSpace(fr.id.GetText()),
		Message:  fr.message.GetText(),
	}
	if fr.onSubmit != nil {
		fr.onSubmit(req)
	}
}
