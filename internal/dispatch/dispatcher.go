// Package dispatch turns push-channel events into patches of the local
// mirrors.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/wtox/internal/channel"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/store"
	"go.uber.org/zap"
)

// Event types sent by the service.
const (
	EventFriendMessage        = "friend_message"
	EventNameChanged          = "name_changed"
	EventStatusMessageChanged = "status_message_changed"
	EventStatusChanged        = "status_changed"
	EventConnectionStatus     = "connection_status"
	EventProfileUpdate        = "profile_update"
	EventFriendlistUpdate     = "friendlist_update"
	EventAvatarUpdate         = "avatar_update"
)

// Fetcher re-fetches mirrors on request of the service.
type Fetcher interface {
	FetchProfile(ctx context.Context) error
	FetchContacts(ctx context.Context) error
}

// Dispatcher holds the event handlers. Events naming a contact that is not
// in the mirror are ignored: the contact list has simply not been loaded yet.
type Dispatcher struct {
	store  *store.Store
	fetch  Fetcher
	notes  *notify.Center
	logger *zap.Logger
	now    func() time.Time

	refetches sync.WaitGroup
}

// New creates a dispatcher. notes may be nil to disable notifications.
func New(st *store.Store, fetch Fetcher, notes *notify.Center, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:  st,
		fetch:  fetch,
		notes:  notes,
		logger: logger.Named("dispatch"),
		now:    time.Now,
	}
}

// Register installs every handler on r.
func (d *Dispatcher) Register(r channel.Registrar) {
	r.RegisterHandler(EventFriendMessage, d.friendMessage)
	r.RegisterHandler(EventNameChanged, d.nameChanged)
	r.RegisterHandler(EventStatusMessageChanged, d.statusMessageChanged)
	r.RegisterHandler(EventStatusChanged, d.statusChanged)
	r.RegisterHandler(EventConnectionStatus, d.connectionStatus)
	r.RegisterHandler(EventProfileUpdate, d.profileUpdate)
	r.RegisterHandler(EventFriendlistUpdate, d.friendlistUpdate)
	r.RegisterHandler(EventAvatarUpdate, d.avatarUpdate)
}

// Wait blocks until the re-fetches started by events have finished.
func (d *Dispatcher) Wait() { d.refetches.Wait() }

type friendMessage struct {
	Friend   uint32 `json:"friend"`
	Message  string `json:"message"`
	IsAction bool   `json:"isAction"`
	Time     int64  `json:"time"`
}

type nameChanged struct {
	Friend uint32 `json:"friend"`
	Name   string `json:"name"`
}

type statusMessageChanged struct {
	Friend    uint32 `json:"friend"`
	StatusMsg string `json:"status_msg"`
}

type statusChanged struct {
	Friend uint32           `json:"friend"`
	Status model.UserStatus `json:"status"`
}

type connectionStatus struct {
	Friend uint32 `json:"friend"`
	Online bool   `json:"online"`
}

func (d *Dispatcher) decode(evt channel.Event, v any) bool {
	if err := evt.Decode(v); err != nil {
		d.logger.Warn("dropping malformed event", zap.String("type", evt.Type), zap.Error(err))
		return false
	}
	return true
}

func (d *Dispatcher) missing(evt channel.Event, friend uint32) {
	d.logger.Debug("event for unknown contact", zap.String("type", evt.Type), zap.Uint32("friend", friend))
}

func (d *Dispatcher) notificationsEnabled() bool {
	return d.notes != nil && d.store.Settings().Bool(model.SettingNotificationsEnabled)
}

func (d *Dispatcher) friendMessage(_ context.Context, evt channel.Event) {
	var p friendMessage
	if !d.decode(evt, &p) {
		return
	}
	ok := d.store.PrependMessage(p.Friend, model.Message{
		IsIncoming: true,
		IsAction:   p.IsAction,
		Message:    p.Message,
		Time:       p.Time,
	})
	if !ok {
		d.missing(evt, p.Friend)
		return
	}

	if active, has := d.store.Active(); !has || active != p.Friend {
		d.store.SetNotify(p.Friend, true)
	}
	if d.notificationsEnabled() {
		c, _ := d.store.Contact(p.Friend)
		number := p.Friend
		d.notes.Show(c.Name, p.Message, control.FriendMessageTag(p.Friend), &number)
	}
}

func (d *Dispatcher) nameChanged(_ context.Context, evt channel.Event) {
	var p nameChanged
	if !d.decode(evt, &p) {
		return
	}
	if !d.store.PatchContact(p.Friend, func(c *model.Contact) { c.Name = p.Name }) {
		d.missing(evt, p.Friend)
	}
}

func (d *Dispatcher) statusMessageChanged(_ context.Context, evt channel.Event) {
	var p statusMessageChanged
	if !d.decode(evt, &p) {
		return
	}
	if !d.store.PatchContact(p.Friend, func(c *model.Contact) { c.StatusMsg = p.StatusMsg }) {
		d.missing(evt, p.Friend)
	}
}

func (d *Dispatcher) statusChanged(_ context.Context, evt channel.Event) {
	var p statusChanged
	if !d.decode(evt, &p) {
		return
	}
	if !d.store.PatchContact(p.Friend, func(c *model.Contact) { c.Status = p.Status }) {
		d.missing(evt, p.Friend)
	}
}

func (d *Dispatcher) connectionStatus(_ context.Context, evt channel.Event) {
	var p connectionStatus
	if !d.decode(evt, &p) {
		return
	}
	if !d.store.PatchContact(p.Friend, func(c *model.Contact) { c.Online = p.Online }) {
		d.missing(evt, p.Friend)
		return
	}
	if d.notificationsEnabled() {
		c, _ := d.store.Contact(p.Friend)
		state := "offline"
		if p.Online {
			state = "online"
		}
		d.notes.Show(c.Name, "is now "+state, control.ConnectionStatusTag(p.Friend), nil)
	}
}

func (d *Dispatcher) profileUpdate(ctx context.Context, _ channel.Event) {
	d.refetch(ctx, "profile", d.fetch.FetchProfile)
}

func (d *Dispatcher) friendlistUpdate(ctx context.Context, _ channel.Event) {
	d.refetch(ctx, "contacts", d.fetch.FetchContacts)
}

// refetch runs off the read loop so later frames are not held up.
func (d *Dispatcher) refetch(ctx context.Context, what string, fn func(context.Context) error) {
	d.refetches.Add(1)
	go func() {
		defer d.refetches.Done()
		if err := fn(ctx); err != nil {
			d.logger.Warn("event re-fetch failed", zap.String("resource", what), zap.Error(err))
		}
	}()
}

func (d *Dispatcher) avatarUpdate(_ context.Context, _ channel.Event) {
	token := d.store.BumpAvatar(d.now().UnixMilli())
	d.logger.Debug("avatar token bumped", zap.Int64("token", token))
}
