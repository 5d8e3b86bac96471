package views

import (
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/rivo/tview"
)

const (
	labelNotifications = "Desktop notifications"
	labelAway          = "Away when disconnected"
	labelAuthUser      = "Login user"
	labelAuthPass      = "Login password"
)

// SettingsView is the settings panel: the two service flags and the login
// credentials of the web interface.
type SettingsView struct {
	*tview.Form
	theme    *ui.Theme
	store    *store.Store
	notif    *tview.Checkbox
	away     *tview.Checkbox
	user     *tview.InputField
	pass     *tview.InputField
	seenUser string

	onFlag     func(key string, on bool)
	onAuthUser func(user string)
	onAuthPass func(pass string)
}

// NewSettingsView creates the settings form.
func NewSettingsView(theme *ui.Theme, st *store.Store) *SettingsView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Settings ")
	form.SetTitleColor(theme.TitleColor)
	form.SetLabelColor(theme.FgColor)
	form.SetFieldBackgroundColor(theme.TableHeaderBg)
	form.SetFieldTextColor(theme.CounterColor)
	form.SetButtonBackgroundColor(theme.CrumbInactiveBg)
	form.SetButtonTextColor(theme.CrumbInactiveFg)

	sv := &SettingsView{Form: form, theme: theme, store: st}

	sv.notif = tview.NewCheckbox().SetLabel(labelNotifications)
	sv.notif.SetChangedFunc(func(on bool) { sv.flag(model.SettingNotificationsEnabled, on) })
	sv.away = tview.NewCheckbox().SetLabel(labelAway)
	sv.away.SetChangedFunc(func(on bool) { sv.flag(model.SettingAwayOnDisconnect, on) })
	sv.user = tview.NewInputField().SetLabel(labelAuthUser).SetFieldWidth(32)
	sv.pass = tview.NewInputField().SetLabel(labelAuthPass).SetFieldWidth(32).SetMaskCharacter('*')

	form.AddFormItem(sv.notif).
		AddFormItem(sv.away).
		AddFormItem(sv.user).
		AddFormItem(sv.pass).
		AddButton("Save user", func() {
			if sv.onAuthUser != nil && sv.user.GetText() != "" {
				sv.onAuthUser(sv.user.GetText())
			}
		}).
		AddButton("Save password", func() {
			if sv.onAuthPass != nil && sv.pass.GetText() != "" {
				sv.onAuthPass(sv.pass.GetText())
				sv.pass.SetText("")
			}
		})

	return sv
}

// Name implements Component.
func (sv *SettingsView) Name() string { return "Settings" }

// Hints implements Component.
func (sv *SettingsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Space", Description: "Toggle"},
		{Key: "Enter", Description: "Press button"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnFlag sets the callback of the two checkboxes.
func (sv *SettingsView) SetOnFlag(fn func(key string, on bool)) { sv.onFlag = fn }

// SetOnAuth sets the callbacks of the credential buttons.
func (sv *SettingsView) SetOnAuth(user func(string), pass func(string)) {
	sv.onAuthUser = user
	sv.onAuthPass = pass
}

func (sv *SettingsView) flag(key string, on bool) {
	if sv.onFlag != nil {
		sv.onFlag(key, on)
	}
}

// Refresh implements Component. The login user field is only overwritten
// when the service reports a different value than last time, so edits in
// progress survive unrelated updates.
func (sv *SettingsView) Refresh() {
	s := sv.store.Settings()
	sv.notif.SetChecked(s.Bool(model.SettingNotificationsEnabled))
	sv.away.SetChecked(s.Bool(model.SettingAwayOnDisconnect))
	if u := s.String(model.SettingAuthUser); u != sv.seenUser {
		sv.seenUser = u
		sv.user.SetText(u)
	}
}
