package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/session"
	"github.com/matheus3301/wtox/internal/status"
	"github.com/matheus3301/wtox/internal/tui/keys"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/matheus3301/wtox/internal/tui/views"
	"go.uber.org/zap"
)

func (a *App) setupBindings() {
	global := []*keys.Action{
		{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit", Visible: true, Handler: a.Stop},
		{Key: tcell.KeyRune, Rune: ':', Label: ":", Description: "Command", Visible: true, Handler: func() { a.openPrompt(ui.PromptCommand) }},
		{Key: tcell.KeyRune, Rune: 's', Label: "s", Description: "Settings", Visible: true, Handler: func() { a.show(pageSettings) }},
		{Key: tcell.KeyRune, Rune: 'p', Label: "p", Description: "Profile", Visible: true, Handler: func() { a.show(pageProfile) }},
		{Key: tcell.KeyRune, Rune: 'a', Label: "a", Description: "Add friend", Visible: true, Handler: func() { a.show(pageAdd) }},
		{Key: tcell.KeyRune, Rune: 'x', Label: "x", Description: "Dismiss notice", Visible: true, Handler: a.dismissFlash},
		{Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Reload", Visible: true, Handler: a.reload},
		{Key: tcell.KeyRune, Rune: '?', Label: "?", Description: "Help", Visible: true, Handler: func() { a.show(pageHelp) }},
	}
	for _, act := range global {
		a.registry.AddGlobal(act)
	}

	a.registry.AddView(pageContacts, &keys.Action{Key: tcell.KeyRune, Rune: '/', Handler: func() { a.openPrompt(ui.PromptFilter) }})
	a.registry.AddView(pageContacts, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() {
		if n, ok := a.contacts.Selected(); ok {
			a.showDetails(n)
		}
	}})
	a.registry.AddView(pageContacts, &keys.Action{Key: tcell.KeyRune, Rune: '0', Handler: func() { a.contacts.SetFilter("") }})
	for i := 1; i <= 9; i++ {
		idx := i
		a.registry.AddView(pageContacts, &keys.Action{Key: tcell.KeyRune, Rune: rune('0' + i), Handler: func() {
			if n, ok := a.contacts.ByIndex(idx); ok {
				a.openChat(n)
			}
		}})
	}

	a.registry.AddView(pageChat, &keys.Action{Key: tcell.KeyRune, Rune: 'i', Handler: func() { a.app.SetFocus(a.chat.Composer()) }})
	a.registry.AddView(pageChat, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() { a.showDetails(a.chat.Number()) }})
	a.registry.AddView(pageDetails, &keys.Action{Key: tcell.KeyEnter, Handler: func() { a.openChat(a.details.Number()) }})
}

func (a *App) setupCallbacks() {
	a.contacts.SetSelectedFunc(func(row, _ int) {
		if n, ok := a.contacts.ByIndex(row); ok {
			a.openChat(n)
		}
	})

	// Admission and the optimistic append are local, so the send runs on
	// the UI goroutine and keeps typing order.
	a.chat.SetOnSend(func(number uint32, text string) {
		_ = a.ctl.SendMessage(a.ctx, number, text)
	})

	a.settings.SetOnFlag(a.settingsFlag)
	a.settings.SetOnAuth(
		func(user string) {
			a.issue("Login user changed", func(ctx context.Context) control.Result {
				res := a.ctl.SetAuthUser(ctx, user)
				if res.OK() {
					a.saveCredentials(func(cfg *config.Session) { cfg.Username = user })
				}
				return res
			}, nil)
		},
		func(pass string) {
			a.issue("Login password changed", func(ctx context.Context) control.Result {
				res := a.ctl.SetAuthPass(ctx, pass)
				if res.OK() {
					a.saveCredentials(func(cfg *config.Session) { cfg.Password = pass })
				}
				return res
			}, nil)
		},
	)

	a.addForm.SetOnSubmit(func(req model.FriendRequest) {
		a.issue("Friend request sent", func(ctx context.Context) control.Result {
			return a.ctl.SendFriendRequest(ctx, req)
		}, func() {
			if a.pages.Current() == pageAdd {
				a.back()
			}
		})
	})
	a.addForm.SetOnCancel(a.back)

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.contacts.SetFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.contacts.SetFilter("")
		}
		a.closePrompt()
	})
}

func (a *App) openChat(number uint32) {
	if err := a.ctl.ShowChat(a.ctx, number); err != nil {
		a.notes.Notice(notify.LevelWarn, err.Error())
		return
	}
	a.chat.Show(number)
	a.show(pageChat)
}

func (a *App) showDetails(number uint32) {
	if _, ok := a.store.Contact(number); !ok {
		return
	}
	a.details.Show(number)
	a.show(pageDetails)
}

func (a *App) dismissFlash() {
	m, ok := a.flash.Dismiss()
	if ok && m.ID != "" {
		a.notes.Dismiss(m.ID)
	}
	a.updateFlash()
}

func (a *App) reload() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.ctl.SyncAll(a.ctx); err != nil {
			a.notes.Notice(notify.LevelWarn, "Reload incomplete: "+err.Error())
		}
	}()
}

// issue runs a command off the UI goroutine. On success ok is flashed and
// then runs on the UI goroutine. Failures already raised a notice.
func (a *App) issue(ok string, fn func(ctx context.Context) control.Result, then func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		res := fn(a.ctx)
		if !res.OK() {
			return
		}
		a.queue(func() {
			a.flash.Info(ok)
			a.updateFlash()
			if then != nil {
				then()
			}
		})
	}()
}

func (a *App) saveCredentials(edit func(cfg *config.Session)) {
	edit(a.opts.Config)
	if err := config.Save(session.ConfigPath(a.opts.Session), a.opts.Config); err != nil {
		a.logger.Error("save session config", zap.Error(err))
		a.notes.Notice(notify.LevelError, "Could not save the new credentials: "+err.Error())
	}
}

func (a *App) runCommand(text string) {
	cmd := ParseCommand(text)
	switch cmd.Name {
	case "q", "quit":
		a.Stop()
	case "h", "help":
		a.show(pageHelp)
	case "name":
		if cmd.Args == "" {
			a.usage(":name <text>")
			return
		}
		a.issue("Name changed", func(ctx context.Context) control.Result {
			return a.ctl.SetUsername(ctx, cmd.Args)
		}, nil)
	case "msg":
		a.issue("Status message changed", func(ctx context.Context) control.Result {
			return a.ctl.SetStatusMessage(ctx, cmd.Args)
		}, nil)
	case "status":
		st, ok := model.ParseUserStatus(cmd.Args)
		if !ok {
			a.usage(":status online|away|busy")
			return
		}
		a.issue("Presence set to "+st.Label(), func(ctx context.Context) control.Result {
			return a.ctl.SetStatus(ctx, st)
		}, nil)
	case "add":
		id, msg, _ := strings.Cut(cmd.Args, " ")
		if id == "" {
			a.show(pageAdd)
			return
		}
		if msg = strings.TrimSpace(msg); msg == "" {
			msg = views.DefaultRequestMessage
		}
		a.issue("Friend request sent", func(ctx context.Context) control.Result {
			return a.ctl.SendFriendRequest(ctx, model.FriendRequest{FriendID: id, Message: msg})
		}, nil)
	case "delete":
		number, ok := a.target(cmd.Args)
		if !ok {
			a.usage(":delete [number]")
			return
		}
		a.issue("Friend removed", func(ctx context.Context) control.Result {
			return a.ctl.DeleteFriend(ctx, number)
		}, func() {
			if a.pages.Contains(pageChat) && a.chat.Number() == number {
				a.show(pageContacts)
			}
		})
	case "notifications", "away":
		on, err := ParseToggle(cmd.Args)
		if err != nil {
			a.usage(":" + cmd.Name + " on|off")
			return
		}
		key := model.SettingNotificationsEnabled
		if cmd.Name == "away" {
			key = model.SettingAwayOnDisconnect
		}
		a.settingsFlag(key, on)
	case "dismiss":
		if cmd.Args == "all" {
			a.notes.DismissAll()
			a.flash.Dismiss()
			a.updateFlash()
			return
		}
		a.dismissFlash()
	case "":
	default:
		a.notes.Notice(notify.LevelWarn, fmt.Sprintf("Unknown command %q, try :help", cmd.Name))
	}
}

func (a *App) settingsFlag(key string, on bool) {
	if key == model.SettingNotificationsEnabled {
		a.issue("Notifications "+onOff(on), func(ctx context.Context) control.Result {
			return a.ctl.SetNotificationsEnabled(ctx, on)
		}, nil)
		return
	}
	a.issue("Away on disconnect "+onOff(on), func(ctx context.Context) control.Result {
		return a.ctl.SetAwayOnDisconnect(ctx, on)
	}, nil)
}

// target resolves the contact a command applies to: an explicit number, or
// the contact on screen.
func (a *App) target(arg string) (uint32, bool) {
	if arg != "" {
		n, err := strconv.ParseUint(arg, 10, 32)
		return uint32(n), err == nil
	}
	switch a.pages.Current() {
	case pageChat:
		return a.chat.Number(), true
	case pageDetails:
		return a.details.Number(), true
	case pageContacts:
		return a.contacts.Selected()
	}
	return 0, false
}

func (a *App) usage(u string) {
	a.notes.Notice(notify.LevelWarn, "Usage: "+u)
}

// onEvent applies a bus event to the screen. Runs on the UI goroutine.
func (a *App) onEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.ChannelStatusChanged:
		if ch, ok := evt.Payload.(status.StatusChange); ok {
			a.crumbs.SetState(ch.To.Label())
		}
		a.updateInfo()
	case bus.NoticeRaised, bus.NotifyShown:
		if n, ok := evt.Payload.(notify.Notification); ok {
			a.flash.FromNotification(n)
			a.updateFlash()
		}
	case bus.NotifyDismissed:
		n, ok := evt.Payload.(notify.Notification)
		if cur := a.flash.Get(); cur != nil && (!ok || cur.ID == n.ID) {
			a.flash.Dismiss()
			a.updateFlash()
		}
	case bus.StateChat:
		a.markReadIfViewing(evt.Payload)
		a.pages.Refresh()
	case bus.StateProfile, bus.StateContacts, bus.StateSettings, bus.StateAvatar:
		a.pages.Refresh()
	}
}

// markReadIfViewing acknowledges messages that arrive in the open chat.
func (a *App) markReadIfViewing(payload any) {
	number, ok := payload.(uint32)
	if !ok || a.pages.Current() != pageChat || a.chat.Number() != number {
		return
	}
	c, ok := a.store.Contact(number)
	if !ok || c.Unread() == 0 {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.ctl.SendMessageRead(a.ctx, number)
	}()
}

func (a *App) helpSections() []views.HelpSection {
	return []views.HelpSection{
		{Title: "Global Keys", Hints: append(a.registry.Hints(""),
			ui.MenuHint{Key: "Esc", Description: "Back"},
			ui.MenuHint{Key: "Ctrl-C", Description: "Quit immediately"},
		)},
		{Title: "Friends", Hints: append(a.contacts.Hints(), ui.MenuHint{Key: "Enter", Description: "Open chat"})},
		{Title: "Chat", Hints: append(a.chat.Hints(), ui.MenuHint{Key: "Enter", Description: "Send (in the composer)"})},
		{Title: "Commands (: mode)", Hints: commandHelp},
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
