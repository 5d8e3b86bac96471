// Package store holds the local mirrors of server-owned state. The service
// stays the source of truth: mirrors are replaced wholesale on fetch and only
// patched by push events and the optimistic send path.
package store

import (
	"sync"

	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/model"
)

// Store is the application state container. Readers get deep copies; all
// writes go through the named methods below, each of which publishes a
// state.* event after releasing the lock.
type Store struct {
	mu sync.RWMutex

	profile  *model.Profile
	contacts map[uint32]*model.Contact
	order    []uint32
	settings model.Settings

	active    uint32
	hasActive bool

	avatarToken int64

	bus *bus.Bus
}

// New creates an empty store. b may be nil.
func New(b *bus.Bus) *Store {
	return &Store{
		contacts: make(map[uint32]*model.Contact),
		settings: model.Settings{},
		bus:      b,
	}
}

// ReplaceProfile swaps the profile mirror.
func (s *Store) ReplaceProfile(p *model.Profile) {
	cp := *p
	s.mu.Lock()
	s.profile = &cp
	s.mu.Unlock()
	s.bus.Emit(bus.StateProfile, cp)
}

// Profile returns the profile mirror and whether it was fetched yet.
func (s *Store) Profile() (model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return model.Profile{}, false
	}
	return *s.profile, true
}

// ReplaceContacts swaps the contact mirror, keeping server order. A number
// listed twice keeps its first position and its last value. The active
// selection and Notify flags survive for numbers that are still present.
func (s *Store) ReplaceContacts(list []*model.Contact) {
	s.mu.Lock()
	old := s.contacts
	s.contacts = make(map[uint32]*model.Contact, len(list))
	s.order = s.order[:0]
	for _, c := range list {
		if c == nil {
			continue
		}
		cp := c.Clone()
		if cp.Chat == nil {
			cp.Chat = []model.Message{}
		}
		cp.Active = false
		cp.Notify = false
		if prev, ok := old[cp.Number]; ok {
			cp.Notify = prev.Notify
		}
		if _, dup := s.contacts[cp.Number]; !dup {
			s.order = append(s.order, cp.Number)
		}
		s.contacts[cp.Number] = cp
	}
	if _, ok := s.contacts[s.active]; s.hasActive && !ok {
		s.hasActive = false
		s.active = 0
	}
	s.mu.Unlock()
	s.bus.Emit(bus.StateContacts, nil)
}

// Contacts returns a snapshot of all contacts in display order.
func (s *Store) Contacts() []*model.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Contact, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.snapshot(s.contacts[n]))
	}
	return out
}

// Contact returns a snapshot of one contact.
func (s *Store) Contact(number uint32) (*model.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[number]
	if !ok {
		return nil, false
	}
	return s.snapshot(c), true
}

func (s *Store) snapshot(c *model.Contact) *model.Contact {
	cp := c.Clone()
	cp.Active = s.hasActive && s.active == c.Number
	return cp
}

// PatchContact applies fn to the stored contact. It reports false, and does
// nothing, when the number is unknown. fn must not keep the pointer.
func (s *Store) PatchContact(number uint32, fn func(c *model.Contact)) bool {
	s.mu.Lock()
	c, ok := s.contacts[number]
	if ok {
		fn(c)
		c.Number = number
	}
	s.mu.Unlock()
	if ok {
		s.bus.Emit(bus.StateContacts, number)
	}
	return ok
}

// PrependMessage puts msg at the front of the contact's chat.
func (s *Store) PrependMessage(number uint32, msg model.Message) bool {
	s.mu.Lock()
	c, ok := s.contacts[number]
	if ok {
		chat := make([]model.Message, 0, len(c.Chat)+1)
		chat = append(chat, msg)
		c.Chat = append(chat, c.Chat...)
	}
	s.mu.Unlock()
	if ok {
		s.bus.Emit(bus.StateChat, number)
	}
	return ok
}

// MarkRead sets the contact's read watermark.
func (s *Store) MarkRead(number uint32, at int64) bool {
	return s.PatchContact(number, func(c *model.Contact) {
		c.LastMsgRead = at
	})
}

// SetNotify sets the contact's unseen-activity flag.
func (s *Store) SetNotify(number uint32, on bool) bool {
	return s.PatchContact(number, func(c *model.Contact) {
		c.Notify = on
	})
}

// SetActive selects the contact shown in the chat view. Exactly one contact
// is active at a time.
func (s *Store) SetActive(number uint32) bool {
	s.mu.Lock()
	_, ok := s.contacts[number]
	if ok {
		s.active = number
		s.hasActive = true
	}
	s.mu.Unlock()
	if ok {
		s.bus.Emit(bus.StateContacts, number)
	}
	return ok
}

// ClearActive deselects the active contact.
func (s *Store) ClearActive() {
	s.mu.Lock()
	s.hasActive = false
	s.active = 0
	s.mu.Unlock()
	s.bus.Emit(bus.StateContacts, nil)
}

// Active returns the active contact number.
func (s *Store) Active() (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.hasActive
}

// ReplaceSettings swaps the settings mirror.
func (s *Store) ReplaceSettings(settings model.Settings) {
	cp := settings.Clone()
	s.mu.Lock()
	s.settings = cp
	s.mu.Unlock()
	s.bus.Emit(bus.StateSettings, nil)
}

// Settings returns a copy of the settings mirror.
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// BumpAvatar advances the avatar cache-busting token to at least now and
// returns it. The token strictly increases.
func (s *Store) BumpAvatar(now int64) int64 {
	s.mu.Lock()
	if now <= s.avatarToken {
		now = s.avatarToken + 1
	}
	s.avatarToken = now
	s.mu.Unlock()
	s.bus.Emit(bus.StateAvatar, now)
	return now
}

// AvatarToken returns the current cache-busting token.
func (s *Store) AvatarToken() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatarToken
}
