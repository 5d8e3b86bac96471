// Package model holds the records exchanged with the service.
package model

import (
	"html"
	"strconv"
	"strings"
)

// UserStatus is the presence state of the user or a contact.
type UserStatus string

const (
	StatusNone    UserStatus = "NONE"
	StatusAway    UserStatus = "AWAY"
	StatusBusy    UserStatus = "BUSY"
	StatusInvalid UserStatus = "INVALID"
)

// ParseUserStatus maps user input to a status, case-insensitively.
func ParseUserStatus(s string) (UserStatus, bool) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusNone, "ONLINE":
		return StatusNone, true
	case StatusAway:
		return StatusAway, true
	case StatusBusy:
		return StatusBusy, true
	}
	return StatusInvalid, false
}

// Label is the human readable presence name.
func (s UserStatus) Label() string {
	switch s {
	case StatusNone:
		return "online"
	case StatusAway:
		return "away"
	case StatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Profile is the local user's identity.
type Profile struct {
	Username  string     `json:"username"`
	StatusMsg string     `json:"status_msg"`
	ToxID     string     `json:"tox_id"`
	Status    UserStatus `json:"status,omitempty"`
}

// Message is one chat record. Once created it is never modified.
type Message struct {
	IsIncoming bool   `json:"isIncoming"`
	IsAction   bool   `json:"isAction"`
	Message    string `json:"message"`
	Time       int64  `json:"time"` // unix milliseconds
}

// Contact is a friend as reported by the contact list endpoint.
// Chat is ordered most-recent-first.
type Contact struct {
	Number      uint32     `json:"number"`
	PublicKey   string     `json:"publicKey,omitempty"`
	Name        string     `json:"name"`
	StatusMsg   string     `json:"status_msg"`
	Status      UserStatus `json:"status"`
	Online      bool       `json:"online"`
	Chat        []Message  `json:"chat"`
	LastMsgRead int64      `json:"last_msg_read"`

	// Local view flags, never sent by the service.
	Active bool `json:"-"`
	Notify bool `json:"-"`
}

// DisplayName falls back to the public key when the name is not known yet.
func (c *Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.PublicKey != "" {
		return c.PublicKey
	}
	return "#" + strconv.FormatUint(uint64(c.Number), 10)
}

// Unread counts incoming messages newer than LastMsgRead.
func (c *Contact) Unread() int {
	n := 0
	for _, m := range c.Chat {
		if m.Time <= c.LastMsgRead {
			break
		}
		if m.IsIncoming {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (c *Contact) Clone() *Contact {
	cp := *c
	cp.Chat = append([]Message(nil), c.Chat...)
	return &cp
}

// Settings is the open key/value mapping returned by the settings endpoint.
type Settings map[string]any

const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingAwayOnDisconnect     = "away_on_disconnect"
	SettingAuthUser             = "auth_user"
)

// Bool reads a flag, accepting JSON booleans and "true"/"false" strings.
func (s Settings) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// String reads a string value.
func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Clone returns a shallow copy of the mapping.
func (s Settings) Clone() Settings {
	cp := make(Settings, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// FriendRequest is the input of the add-friend form.
type FriendRequest struct {
	FriendID string `json:"friend_id"`
	Message  string `json:"message"`
}

// HTMLBody escapes text for HTML output and turns newlines into line breaks.
func HTMLBody(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
