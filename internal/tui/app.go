// Package tui is the terminal front-end: it mirrors the service through the
// controller and the push channel and renders the mirrors with tview.
package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/channel"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/dispatch"
	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/status"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/matheus3301/wtox/internal/tui/keys"
	"github.com/matheus3301/wtox/internal/tui/ui"
	"github.com/matheus3301/wtox/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page names.
const (
	pageContacts = "contacts"
	pageChat     = "chat"
	pageDetails  = "details"
	pageSettings = "settings"
	pageProfile  = "profile"
	pageAdd      = "add"
	pageHelp     = "help"
)

const (
	headerHeight = 6
	promptHeight = 3
	eventBuffer  = 256
)

// Options wires an App to a session.
type Options struct {
	Session string
	Config  *config.Session
	Client  *api.Client
	Logger  *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app    *tview.Application
	theme  *ui.Theme
	opts   Options
	logger *zap.Logger

	bus        *bus.Bus
	machine    *status.Machine
	store      *store.Store
	notes      *notify.Center
	ctl        *control.Controller
	channel    *channel.Channel
	dispatcher *dispatch.Dispatcher
	registry   *keys.Registry

	root     *tview.Flex
	pages    *ui.Pages
	crumbs   *ui.Crumbs
	menu     *ui.Menu
	info     *ui.SessionInfo
	prompt   *ui.Prompt
	flash    *ui.FlashModel
	flashBar *ui.FlashBar

	contacts *views.ContactList
	chat     *views.ChatThread
	details  *views.ContactInfo
	settings *views.SettingsView
	profile  *views.ProfileView
	addForm  *views.FriendRequestForm
	help     *views.HelpView

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp creates the TUI application.
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tui")
	ctx, cancel := context.WithCancel(context.Background())

	b := bus.New()
	machine := status.NewMachine(b)
	st := store.New(b)
	notes := notify.New(b, logger)
	ctl := control.New(opts.Client, st, notes, logger)
	theme := ui.DefaultTheme()

	a := &App{
		app:     tview.NewApplication(),
		theme:   theme,
		opts:    opts,
		logger:  logger,
		bus:     b,
		machine: machine,
		store:   st,
		notes:   notes,
		ctl:     ctl,
		channel: channel.New(opts.Client, channel.Options{
			Delay:   opts.Config.ReconnectDelay.Duration,
			Machine: machine,
			Bus:     b,
			Logger:  logger,
		}),
		dispatcher: dispatch.New(st, ctl, notes, logger),
		registry:   keys.NewRegistry(),

		pages:    ui.NewPages(),
		crumbs:   ui.NewCrumbs(theme),
		menu:     ui.NewMenu(theme),
		info:     ui.NewSessionInfo(theme),
		prompt:   ui.NewPrompt(theme),
		flash:    ui.NewFlashModel(),
		flashBar: ui.NewFlashBar(theme),

		contacts: views.NewContactList(theme, st),
		chat:     views.NewChatThread(theme, st),
		details:  views.NewContactInfo(theme, st, opts.Client.AvatarURL),
		settings: views.NewSettingsView(theme, st),
		profile:  views.NewProfileView(theme, st),
		addForm:  views.NewFriendRequestForm(theme),
		help:     views.NewHelpView(theme),

		ctx:    ctx,
		cancel: cancel,
	}

	a.dispatcher.Register(a.channel)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.help.SetSections(a.helpSections())

	return a
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 3, false).
		AddItem(ui.NewLogo(a.theme), 18, 0, false)

	a.pages.Add(pageContacts, a.contacts, a.contacts)
	a.pages.Add(pageChat, a.chat, a.chat)
	a.pages.Add(pageDetails, a.details, a.details)
	a.pages.Add(pageSettings, a.settings, a.settings)
	a.pages.Add(pageProfile, a.profile, a.profile)
	a.pages.Add(pageAdd, a.addForm, a.addForm)
	a.pages.Add(pageHelp, a.help, a.help)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.pages.SetOnChange(func(top ui.Component, stack []string) {
		a.crumbs.Update(stack)
		var hints []ui.MenuHint
		if top != nil {
			hints = append(hints, top.Hints()...)
		}
		a.menu.Update(append(hints, a.registry.Hints(a.pages.Current())...))
		a.updateInfo()
	})
	a.crumbs.SetState(a.machine.Current().Label())
	a.pages.Reset(pageContacts)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
	a.focusTop()
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}

	focused := a.app.GetFocus()
	if focused == a.prompt.InputField {
		return ev
	}

	if ev.Key() == tcell.KeyEscape {
		if focused == a.chat.Composer() {
			a.app.SetFocus(a.chat.Messages())
			return nil
		}
		a.back()
		return nil
	}

	// Text inputs keep every other key.
	if _, ok := focused.(*tview.InputField); ok {
		return ev
	}

	if a.registry.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

// focusTop gives focus to the primitive of the current page.
func (a *App) focusTop() {
	switch a.pages.Current() {
	case pageContacts:
		a.app.SetFocus(a.contacts)
	case pageChat:
		a.app.SetFocus(a.chat.Messages())
	case pageDetails:
		a.app.SetFocus(a.details)
	case pageSettings:
		a.app.SetFocus(a.settings)
	case pageProfile:
		a.app.SetFocus(a.profile)
	case pageAdd:
		a.app.SetFocus(a.addForm)
	case pageHelp:
		a.app.SetFocus(a.help)
	}
}

// show pushes name, or unwinds the stack to it when it is already open.
func (a *App) show(name string) {
	if a.pages.Contains(name) {
		for a.pages.Current() != name {
			a.leave(a.pages.Pop())
		}
		a.pages.Refresh()
	} else {
		a.pages.Push(name)
	}
	a.focusTop()
}

func (a *App) back() {
	a.leave(a.pages.Pop())
	a.focusTop()
}

// leave runs the exit side effects of a popped page.
func (a *App) leave(name string) {
	switch name {
	case pageChat:
		a.ctl.HideChat()
	case pageAdd:
		a.addForm.Reset()
	}
}

func (a *App) openPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt.InputField)
}

func (a *App) closePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusTop()
}

func (a *App) updateInfo() {
	data := &ui.SessionData{
		Session: a.opts.Session,
		Server:  a.opts.Config.ServerURL,
		Channel: a.machine.Current().Label() + " since " + a.machine.Since().Format("15:04"),
	}
	if p, ok := a.store.Profile(); ok {
		data.Username = p.Username
		data.Status = p.Status.Label()
	}
	for _, c := range a.store.Contacts() {
		data.Contacts++
		if c.Online {
			data.Online++
		}
		data.Unread += c.Unread()
	}
	a.info.Update(data)
}

func (a *App) updateFlash() {
	a.flashBar.Update(a.flash.Get())
}

// Run starts the push channel and the UI loop, and blocks until the user
// quits.
func (a *App) Run() error {
	events, unsubscribe := a.bus.Subscribe("", eventBuffer)
	defer unsubscribe()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runChannel()
	}()
	// The pumps only post to the UI loop and end with ctx; they are not
	// waited for because the loop no longer drains after Run returns.
	go func() {
		for {
			select {
			case <-a.ctx.Done():
				return
			case evt := <-events:
				a.queue(func() { a.onEvent(evt) })
			}
		}
	}()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				a.queue(a.updateFlash)
			}
		}
	}()

	err := a.app.Run()
	a.cancel()
	a.wg.Wait()
	a.dispatcher.Wait()
	a.ctl.Wait()
	return err
}

func (a *App) runChannel() {
	err := a.channel.Run(a.ctx,
		func() {
			if err := a.ctl.SyncAll(a.ctx); err != nil {
				a.logger.Warn("sync after connect incomplete", zap.Error(err))
			}
		},
		func(err error) {
			a.logger.Info("push channel closed", zap.Error(err))
		},
	)
	if errors.Is(err, errs.ErrTransportUnavailable) {
		a.notes.Notice(notify.LevelError, "Live updates are unavailable: "+err.Error())
		// Without a channel there is no connect to trigger the first sync.
		if err := a.ctl.SyncAll(a.ctx); err != nil {
			a.logger.Warn("initial sync incomplete", zap.Error(err))
		}
	}
}

// queue runs fn on the UI goroutine and redraws, unless the app is
// shutting down.
func (a *App) queue(fn func()) {
	if a.ctx.Err() != nil {
		return
	}
	a.app.QueueUpdateDraw(fn)
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
