// Package control implements the resource fetchers and command issuers.
// Every command re-fetches the resource it touches, on success and on
// failure alike, so the mirrors converge on the service's state.
package control

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/store"
	"go.uber.org/zap"
)

// API is the request/response surface the controller drives.
type API interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
	GetContactList(ctx context.Context) ([]*model.Contact, error)
	GetSettings(ctx context.Context) (model.Settings, error)

	SetUsername(ctx context.Context, username string) error
	SetStatusMessage(ctx context.Context, statusMsg string) error
	SetStatus(ctx context.Context, status model.UserStatus) error
	SendMessage(ctx context.Context, friend uint32, text string) error
	SendReadReceipt(ctx context.Context, friend uint32) error
	SendFriendRequest(ctx context.Context, req model.FriendRequest) error
	DeleteFriend(ctx context.Context, friend uint32) error
	SetAuthUser(ctx context.Context, username string) error
	SetAuthPass(ctx context.Context, password string) error
	SetKeyValue(ctx context.Context, key, value string) error
	UpdateCredentials(username, password string)
}

// Resource names a mirror.
type Resource string

const (
	ResourceProfile  Resource = "profile"
	ResourceContacts Resource = "contacts"
	ResourceSettings Resource = "settings"
)

// Result is the outcome of a command. Resource is the mirror that was
// re-fetched afterwards; Err is the command's own failure, if any.
type Result struct {
	Resource Resource
	Err      error
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Controller owns the mirrors on behalf of the view layer.
type Controller struct {
	api    API
	store  *store.Store
	notes  *notify.Center
	logger *zap.Logger
	now    func() time.Time

	inflight sync.WaitGroup
}

// New creates a controller. notes may be nil.
func New(a API, st *store.Store, notes *notify.Center, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notes == nil {
		notes = notify.New(nil, logger)
	}
	return &Controller{
		api:    a,
		store:  st,
		notes:  notes,
		logger: logger.Named("control"),
		now:    time.Now,
	}
}

// Store returns the mirrors.
func (c *Controller) Store() *store.Store { return c.store }

// Notifications returns the notification centre.
func (c *Controller) Notifications() *notify.Center { return c.notes }

// Wait blocks until every fire-and-forget request has finished.
func (c *Controller) Wait() { c.inflight.Wait() }

func (c *Controller) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(ctx)
	}()
}

// FetchProfile replaces the profile mirror. On failure it is left as is.
func (c *Controller) FetchProfile(ctx context.Context) error {
	p, err := c.api.GetProfile(ctx)
	if err != nil {
		c.logger.Warn("fetch profile failed", zap.Error(err))
		return fmt.Errorf("fetch profile: %w", err)
	}
	c.store.ReplaceProfile(p)
	return nil
}

// FetchContacts replaces the contact mirror.
func (c *Controller) FetchContacts(ctx context.Context) error {
	list, err := c.api.GetContactList(ctx)
	if err != nil {
		c.logger.Warn("fetch contacts failed", zap.Error(err))
		return fmt.Errorf("fetch contacts: %w", err)
	}
	c.store.ReplaceContacts(list)
	return nil
}

// FetchSettings replaces the settings mirror.
func (c *Controller) FetchSettings(ctx context.Context) error {
	s, err := c.api.GetSettings(ctx)
	if err != nil {
		c.logger.Warn("fetch settings failed", zap.Error(err))
		return fmt.Errorf("fetch settings: %w", err)
	}
	c.store.ReplaceSettings(s)
	return nil
}

// Fetch re-fetches one resource.
func (c *Controller) Fetch(ctx context.Context, r Resource) error {
	switch r {
	case ResourceProfile:
		return c.FetchProfile(ctx)
	case ResourceContacts:
		return c.FetchContacts(ctx)
	case ResourceSettings:
		return c.FetchSettings(ctx)
	}
	return fmt.Errorf("unknown resource %q", r)
}

// SyncAll fetches every mirror concurrently. It runs after each (re)connect
// of the push channel, since missed events are not replayed.
func (c *Controller) SyncAll(ctx context.Context) error {
	resources := []Resource{ResourceProfile, ResourceContacts, ResourceSettings}
	errList := make([]error, len(resources))
	var wg sync.WaitGroup
	for i, r := range resources {
		i, r := i, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			errList[i] = c.Fetch(ctx, r)
		}()
	}
	wg.Wait()
	return errors.Join(errList...)
}

// issue runs a mutation, then re-fetches its resource whatever the outcome.
func (c *Controller) issue(ctx context.Context, action string, r Resource, call func(ctx context.Context) error) Result {
	err := call(ctx)
	if err != nil {
		c.logger.Warn("command failed", zap.String("action", action), zap.Error(err))
		c.notes.Notice(notify.LevelError, fmt.Sprintf("%s: %s", action, api.ErrorMessage(err)))
		err = fmt.Errorf("%s: %w", action, err)
	} else {
		c.logger.Debug("command done", zap.String("action", action))
	}
	if ferr := c.Fetch(ctx, r); ferr != nil {
		c.logger.Warn("re-fetch after command failed", zap.String("action", action), zap.Error(ferr))
	}
	return Result{Resource: r, Err: err}
}

// SetUsername changes the display name.
func (c *Controller) SetUsername(ctx context.Context, username string) Result {
	return c.issue(ctx, "set username", ResourceProfile, func(ctx context.Context) error {
		return c.api.SetUsername(ctx, username)
	})
}

// SetStatusMessage changes the status text.
func (c *Controller) SetStatusMessage(ctx context.Context, statusMsg string) Result {
	return c.issue(ctx, "set status message", ResourceProfile, func(ctx context.Context) error {
		return c.api.SetStatusMessage(ctx, statusMsg)
	})
}

// SetStatus changes the presence state.
func (c *Controller) SetStatus(ctx context.Context, status model.UserStatus) Result {
	return c.issue(ctx, "set status", ResourceProfile, func(ctx context.Context) error {
		return c.api.SetStatus(ctx, status)
	})
}

// SendFriendRequest asks a new contact to accept us.
func (c *Controller) SendFriendRequest(ctx context.Context, req model.FriendRequest) Result {
	req.FriendID = strings.TrimSpace(req.FriendID)
	return c.issue(ctx, "add friend", ResourceContacts, func(ctx context.Context) error {
		return c.api.SendFriendRequest(ctx, req)
	})
}

// DeleteFriend removes a contact.
func (c *Controller) DeleteFriend(ctx context.Context, number uint32) Result {
	return c.issue(ctx, "delete friend", ResourceContacts, func(ctx context.Context) error {
		return c.api.DeleteFriend(ctx, number)
	})
}

// SetAuthUser changes the access-control username. Later requests use it.
func (c *Controller) SetAuthUser(ctx context.Context, username string) Result {
	return c.issue(ctx, "set auth user", ResourceSettings, func(ctx context.Context) error {
		if err := c.api.SetAuthUser(ctx, username); err != nil {
			return err
		}
		c.api.UpdateCredentials(username, "")
		return nil
	})
}

// SetAuthPass changes the access-control password. Later requests use it.
func (c *Controller) SetAuthPass(ctx context.Context, password string) Result {
	return c.issue(ctx, "set auth password", ResourceSettings, func(ctx context.Context) error {
		if err := c.api.SetAuthPass(ctx, password); err != nil {
			return err
		}
		c.api.UpdateCredentials("", password)
		return nil
	})
}

// SetNotificationsEnabled toggles desktop notifications.
func (c *Controller) SetNotificationsEnabled(ctx context.Context, on bool) Result {
	return c.setFlag(ctx, "toggle notifications", api.KeyNotificationsEnabled, on)
}

// SetAwayOnDisconnect toggles the automatic away status.
func (c *Controller) SetAwayOnDisconnect(ctx context.Context, on bool) Result {
	return c.setFlag(ctx, "toggle away on disconnect", api.KeyAwayOnDisconnect, on)
}

func (c *Controller) setFlag(ctx context.Context, action, key string, on bool) Result {
	return c.issue(ctx, action, ResourceSettings, func(ctx context.Context) error {
		return c.api.SetKeyValue(ctx, key, strconv.FormatBool(on))
	})
}
