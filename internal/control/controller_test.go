package control_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/api/apitest"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *apitest.Server
	client *api.Client
	store  *store.Store
	notes  *notify.Center
	ctl    *control.Controller
}

func setup(t *testing.T, contacts ...*model.Contact) *fixture {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	srv.SetContacts(contacts...)

	cfg := config.Defaults()
	cfg.ServerURL = srv.URL
	client, err := api.New(cfg, nil)
	require.NoError(t, err)

	st := store.New(nil)
	notes := notify.New(nil, nil)
	ctl := control.New(client, st, notes, nil)
	t.Cleanup(ctl.Wait)
	return &fixture{srv: srv, client: client, store: st, notes: notes, ctl: ctl}
}

func alice() *model.Contact {
	return &model.Contact{Number: 7, Name: "Alice", Online: true, Chat: []model.Message{}}
}

func bob() *model.Contact {
	return &model.Contact{Number: 8, Name: "Bob", Online: false, Chat: []model.Message{}}
}

func TestSyncAllFillsMirrors(t *testing.T) {
	f := setup(t, alice(), bob())
	require.NoError(t, f.ctl.SyncAll(context.Background()))

	p, ok := f.store.Profile()
	require.True(t, ok)
	assert.Equal(t, "WebTox User", p.Username)
	assert.Len(t, f.store.Contacts(), 2)
	assert.Equal(t, "user", f.store.Settings().String(model.SettingAuthUser))
}

func TestFetchIsIdempotent(t *testing.T) {
	f := setup(t, alice(), bob())
	ctx := context.Background()

	require.NoError(t, f.ctl.SyncAll(ctx))
	profile, _ := f.store.Profile()
	contacts := f.store.Contacts()
	settings := f.store.Settings()

	require.NoError(t, f.ctl.SyncAll(ctx))
	again, _ := f.store.Profile()
	assert.Equal(t, profile, again)
	assert.Equal(t, contacts, f.store.Contacts())
	assert.Equal(t, settings, f.store.Settings())
}

func TestFetchFailureLeavesMirror(t *testing.T) {
	f := setup(t, alice())
	ctx := context.Background()
	require.NoError(t, f.ctl.FetchContacts(ctx))

	f.srv.SetContacts()
	f.srv.Fail(api.PathContactList, 500, "", "")
	require.Error(t, f.ctl.FetchContacts(ctx))
	assert.Len(t, f.store.Contacts(), 1)
}

func TestSendMessagePreconditionsIssueNoRequest(t *testing.T) {
	tests := []struct {
		name   string
		number uint32
		text   string
		want   error
	}{
		{"empty text", 7, "", errs.ErrEmptyMessage},
		{"offline recipient", 8, "hello", errs.ErrRecipientOffline},
		{"unknown contact", 99, "hello", errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, alice(), bob())
			require.NoError(t, f.ctl.FetchContacts(context.Background()))
			before := len(f.srv.Requests())

			err := f.ctl.SendMessage(context.Background(), tt.number, tt.text)
			require.ErrorIs(t, err, tt.want)
			f.ctl.Wait()

			assert.Len(t, f.srv.Requests(), before)
			assert.Equal(t, 0, f.srv.Count(api.PathMessage))
			if c, ok := f.store.Contact(tt.number); ok {
				assert.Empty(t, c.Chat)
			}
			latest, ok := f.notes.Latest()
			require.True(t, ok)
			assert.Equal(t, notify.LevelWarn, latest.Level)
		})
	}
}

func TestSendMessageIsOptimistic(t *testing.T) {
	f := setup(t, alice(), bob())
	require.NoError(t, f.ctl.FetchContacts(context.Background()))
	release := f.srv.Hold(api.PathMessage)
	defer release()

	start := time.Now().UnixMilli()
	require.NoError(t, f.ctl.SendMessage(context.Background(), 7, "hello <b>"))

	// Visible before the service answered.
	c, _ := f.store.Contact(7)
	require.Len(t, c.Chat, 1)
	assert.False(t, c.Chat[0].IsIncoming)
	assert.Equal(t, "hello <b>", c.Chat[0].Message)
	assert.GreaterOrEqual(t, c.Chat[0].Time, start)
	assert.Equal(t, 0, f.srv.Count(api.PathMessage))

	other, _ := f.store.Contact(8)
	assert.Empty(t, other.Chat)

	release()
	f.ctl.Wait()
	assert.Equal(t, 1, f.srv.Count(api.PathMessage))
}

func TestSendMessageSendsWhitespace(t *testing.T) {
	f := setup(t, alice())
	require.NoError(t, f.ctl.FetchContacts(context.Background()))

	require.NoError(t, f.ctl.SendMessage(context.Background(), 7, "  "))
	f.ctl.Wait()

	c, _ := f.store.Contact(7)
	require.Len(t, c.Chat, 1)
	assert.Equal(t, "  ", c.Chat[0].Message)
	assert.Equal(t, 1, f.srv.Count(api.PathMessage))
}

func TestSendMessageMarksChatRead(t *testing.T) {
	a := alice()
	a.Chat = []model.Message{
		{IsIncoming: true, Message: "are you there?", Time: 2000},
		{IsIncoming: true, Message: "hi", Time: 1000},
	}
	f := setup(t, a)
	require.NoError(t, f.ctl.FetchContacts(context.Background()))
	before, _ := f.store.Contact(7)
	require.Equal(t, 2, before.Unread())

	start := time.Now().UnixMilli()
	require.NoError(t, f.ctl.SendMessage(context.Background(), 7, "yes"))

	c, _ := f.store.Contact(7)
	assert.Equal(t, 0, c.Unread())
	assert.GreaterOrEqual(t, c.LastMsgRead, start)
	assert.Equal(t, c.Chat[0].Time, c.LastMsgRead)
}

func TestSendMessageFailureIsSwallowed(t *testing.T) {
	f := setup(t, alice())
	require.NoError(t, f.ctl.FetchContacts(context.Background()))
	f.srv.Fail(api.PathMessage, 422, "unknown", "An unknown error occoured.")

	require.NoError(t, f.ctl.SendMessage(context.Background(), 7, "hi"))
	f.ctl.Wait()

	c, _ := f.store.Contact(7)
	assert.Len(t, c.Chat, 1)
}

func TestCommandRefetchesOnSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.ctl.SetUsername(ctx, "bob")
	require.True(t, res.OK())
	assert.Equal(t, control.ResourceProfile, res.Resource)
	p, _ := f.store.Profile()
	assert.Equal(t, "bob", p.Username)

	res = f.ctl.SetStatusMessage(ctx, "coding")
	require.NoError(t, res.Err)
	res = f.ctl.SetStatus(ctx, model.StatusAway)
	require.NoError(t, res.Err)
	p, _ = f.store.Profile()
	assert.Equal(t, "coding", p.StatusMsg)
	assert.Equal(t, model.StatusAway, p.Status)
	assert.Equal(t, 3, f.srv.Count(api.PathProfile))
}

func TestCommandRefetchesOnFailure(t *testing.T) {
	f := setup(t)
	f.srv.Fail(api.PathUsername, 422, "unknown", "An unknown error occoured.")

	res := f.ctl.SetUsername(context.Background(), "bob")
	require.Error(t, res.Err)
	assert.Equal(t, 1, f.srv.Count(api.PathProfile))
	p, ok := f.store.Profile()
	require.True(t, ok)
	assert.Equal(t, "WebTox User", p.Username)

	latest, ok := f.notes.Latest()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, latest.Level)
	assert.Contains(t, latest.Body, "An unknown error occoured.")
}

func TestFriendRequest(t *testing.T) {
	f := setup(t, alice())
	ctx := context.Background()

	res := f.ctl.SendFriendRequest(ctx, model.FriendRequest{FriendID: "zz", Message: "hi"})
	require.Error(t, res.Err)
	assert.Equal(t, control.ResourceContacts, res.Resource)
	latest, _ := f.notes.Latest()
	assert.Contains(t, latest.Body, "The Tox ID you entered is invalid.")
	assert.Len(t, f.store.Contacts(), 1)

	id := strings.Repeat("0A", apitest.ToxAddressSize)
	res = f.ctl.SendFriendRequest(ctx, model.FriendRequest{FriendID: " " + id + " ", Message: "add me"})
	require.NoError(t, res.Err)
	assert.Len(t, f.store.Contacts(), 2)
}

func TestDeleteActiveFriendClearsSelection(t *testing.T) {
	f := setup(t, alice(), bob())
	ctx := context.Background()
	require.NoError(t, f.ctl.FetchContacts(ctx))
	require.NoError(t, f.ctl.ShowChat(ctx, 7))

	res := f.ctl.DeleteFriend(ctx, 7)
	require.NoError(t, res.Err)
	_, ok := f.store.Active()
	assert.False(t, ok)
	assert.Len(t, f.store.Contacts(), 1)
}

func TestSettingsFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.ctl.SetNotificationsEnabled(ctx, true)
	require.NoError(t, res.Err)
	assert.Equal(t, control.ResourceSettings, res.Resource)
	assert.True(t, f.store.Settings().Bool(model.SettingNotificationsEnabled))

	res = f.ctl.SetAwayOnDisconnect(ctx, true)
	require.NoError(t, res.Err)
	assert.True(t, f.store.Settings().Bool(model.SettingAwayOnDisconnect))

	var values []any
	for _, r := range f.srv.Requests() {
		if r.Path == api.PathKeyValue {
			values = append(values, r.Body["value"])
		}
	}
	assert.Equal(t, []any{"true", "true"}, values)
}

func TestSetAuthUserSwitchesCredentials(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.ctl.SetAuthUser(ctx, "alice")
	require.NoError(t, res.Err)
	assert.Equal(t, "alice", f.store.Settings().String(model.SettingAuthUser))

	res = f.ctl.SetAuthPass(ctx, "secret")
	require.NoError(t, res.Err)
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", f.client.AuthHeader().Get("Authorization"))
}

func TestShowChat(t *testing.T) {
	f := setup(t, alice(), bob())
	ctx := context.Background()
	require.NoError(t, f.ctl.FetchContacts(ctx))
	f.store.SetNotify(7, true)
	n := uint32(7)
	f.notes.Show("Alice", "hi", control.FriendMessageTag(7), &n)

	start := time.Now().UnixMilli()
	require.NoError(t, f.ctl.ShowChat(ctx, 7))
	f.ctl.Wait()

	c, _ := f.store.Contact(7)
	assert.True(t, c.Active)
	assert.False(t, c.Notify)
	assert.GreaterOrEqual(t, c.LastMsgRead, start)
	assert.Empty(t, f.notes.Pending())
	assert.Equal(t, 1, f.srv.Count(api.PathReadReceipt))

	require.ErrorIs(t, f.ctl.ShowChat(ctx, 99), errs.ErrNotFound)

	f.ctl.HideChat()
	_, ok := f.store.Active()
	assert.False(t, ok)
}

func TestSendMessageReadFailureKeepsWatermark(t *testing.T) {
	f := setup(t, alice())
	ctx := context.Background()
	require.NoError(t, f.ctl.FetchContacts(ctx))
	f.srv.Fail(api.PathReadReceipt, 500, "", "")

	require.Error(t, f.ctl.SendMessageRead(ctx, 7))
	c, _ := f.store.Contact(7)
	assert.Zero(t, c.LastMsgRead)
}
