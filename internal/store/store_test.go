package store_test

import (
	"testing"

	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contacts() []*model.Contact {
	return []*model.Contact{
		{Number: 3, Name: "Carol", Online: true},
		{Number: 7, Name: "Alice", Online: true},
		{Number: 1, Name: "Bob"},
	}
}

func numbers(cs []*model.Contact) []uint32 {
	out := make([]uint32, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Number)
	}
	return out
}

func TestReplaceContactsKeepsServerOrder(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())

	got := s.Contacts()
	assert.Equal(t, []uint32{3, 7, 1}, numbers(got))
	for _, c := range got {
		assert.NotNil(t, c.Chat)
	}
}

func TestReplaceContactsDuplicateNumber(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts([]*model.Contact{
		{Number: 1, Name: "old"},
		{Number: 2, Name: "two"},
		{Number: 1, Name: "new"},
	})

	got := s.Contacts()
	require.Len(t, got, 2)
	assert.Equal(t, []uint32{1, 2}, numbers(got))
	assert.Equal(t, "new", got[0].Name)
}

func TestReplaceContactsIsIdempotent(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	first := s.Contacts()
	s.ReplaceContacts(contacts())
	assert.Equal(t, first, s.Contacts())
}

func TestReplaceContactsKeepsActiveAndNotify(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	require.True(t, s.SetActive(7))
	require.True(t, s.SetNotify(3, true))

	s.ReplaceContacts(contacts())

	n, ok := s.Active()
	assert.True(t, ok)
	assert.Equal(t, uint32(7), n)
	c, _ := s.Contact(3)
	assert.True(t, c.Notify)
	c, _ = s.Contact(7)
	assert.True(t, c.Active)
}

func TestReplaceContactsClearsVanishedActive(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	require.True(t, s.SetActive(7))

	s.ReplaceContacts([]*model.Contact{{Number: 3}})

	_, ok := s.Active()
	assert.False(t, ok)
}

func TestSetActiveIsExclusive(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	s.SetActive(3)
	s.SetActive(1)

	active := 0
	for _, c := range s.Contacts() {
		if c.Active {
			active++
			assert.Equal(t, uint32(1), c.Number)
		}
	}
	assert.Equal(t, 1, active)

	assert.False(t, s.SetActive(99))
	n, _ := s.Active()
	assert.Equal(t, uint32(1), n)
}

func TestPrependMessage(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())

	require.True(t, s.PrependMessage(7, model.Message{Message: "one", Time: 1}))
	require.True(t, s.PrependMessage(7, model.Message{Message: "two", Time: 2}))

	c, _ := s.Contact(7)
	require.Len(t, c.Chat, 2)
	assert.Equal(t, "two", c.Chat[0].Message)
	assert.Equal(t, "one", c.Chat[1].Message)

	other, _ := s.Contact(3)
	assert.Empty(t, other.Chat)

	assert.False(t, s.PrependMessage(99, model.Message{Message: "x"}))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	s.PrependMessage(7, model.Message{Message: "hi"})

	c, _ := s.Contact(7)
	c.Name = "mutated"
	c.Chat[0].Message = "mutated"

	again, _ := s.Contact(7)
	assert.Equal(t, "Alice", again.Name)
	assert.Equal(t, "hi", again.Chat[0].Message)

	settings := model.Settings{"a": true}
	s.ReplaceSettings(settings)
	settings["a"] = false
	assert.True(t, s.Settings().Bool("a"))
}

func TestPatchContactUnknownNumber(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	before := s.Contacts()

	called := false
	assert.False(t, s.PatchContact(42, func(*model.Contact) { called = true }))
	assert.False(t, called)
	assert.Equal(t, before, s.Contacts())
}

func TestPatchContactCannotRenumber(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	s.PatchContact(7, func(c *model.Contact) { c.Number = 8 })

	_, ok := s.Contact(7)
	assert.True(t, ok)
}

func TestMarkRead(t *testing.T) {
	s := store.New(nil)
	s.ReplaceContacts(contacts())
	s.PrependMessage(7, model.Message{IsIncoming: true, Time: 100})
	c, _ := s.Contact(7)
	assert.Equal(t, 1, c.Unread())

	s.MarkRead(7, 200)
	c, _ = s.Contact(7)
	assert.Equal(t, int64(200), c.LastMsgRead)
	assert.Equal(t, 0, c.Unread())
}

func TestProfile(t *testing.T) {
	s := store.New(nil)
	_, ok := s.Profile()
	assert.False(t, ok)

	s.ReplaceProfile(&model.Profile{Username: "me", ToxID: "AB"})
	p, ok := s.Profile()
	assert.True(t, ok)
	assert.Equal(t, "me", p.Username)
}

func TestBumpAvatarStrictlyIncreases(t *testing.T) {
	s := store.New(nil)
	assert.Equal(t, int64(1000), s.BumpAvatar(1000))
	assert.Equal(t, int64(1001), s.BumpAvatar(1000))
	assert.Equal(t, int64(1002), s.BumpAvatar(5))
	assert.Equal(t, int64(1002), s.AvatarToken())
}

func TestMutationsPublishEvents(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("state.", 16)
	defer unsub()

	s := store.New(b)
	s.ReplaceProfile(&model.Profile{})
	s.ReplaceContacts(contacts())
	s.ReplaceSettings(model.Settings{})
	s.PrependMessage(7, model.Message{})
	s.BumpAvatar(1)

	var kinds []string
	for n := 0; n < 5; n++ {
		kinds = append(kinds, (<-ch).Kind)
	}
	assert.Equal(t, []string{
		bus.StateProfile, bus.StateContacts, bus.StateSettings, bus.StateChat, bus.StateAvatar,
	}, kinds)
}
