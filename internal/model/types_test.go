package model

import "testing"

func TestHTMLBody(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hi", "hi"},
		{"a\nb", "a<br>b"},
		{"<b>x</b>\n", "&lt;b&gt;x&lt;/b&gt;<br>"},
	}
	for _, tt := range tests {
		if got := HTMLBody(tt.in); got != tt.want {
			t.Errorf("HTMLBody(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUserStatus(t *testing.T) {
	tests := []struct {
		in   string
		want UserStatus
		ok   bool
	}{
		{"none", StatusNone, true},
		{"online", StatusNone, true},
		{" Away ", StatusAway, true},
		{"BUSY", StatusBusy, true},
		{"sleeping", StatusInvalid, false},
	}
	for _, tt := range tests {
		got, ok := ParseUserStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseUserStatus(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSettingsBool(t *testing.T) {
	s := Settings{
		"notifications_enabled": true,
		"away_on_disconnect":    "true",
		"auth_user":             "user",
	}
	if !s.Bool(SettingNotificationsEnabled) {
		t.Error("notifications_enabled should be true")
	}
	if !s.Bool(SettingAwayOnDisconnect) {
		t.Error("string \"true\" should parse as true")
	}
	if s.Bool("missing") {
		t.Error("missing key should be false")
	}
	if s.String(SettingAuthUser) != "user" {
		t.Errorf("auth_user = %q", s.String(SettingAuthUser))
	}
}

func TestUnread(t *testing.T) {
	c := &Contact{
		LastMsgRead: 100,
		Chat: []Message{
			{IsIncoming: true, Time: 300},
			{IsIncoming: false, Time: 200},
			{IsIncoming: true, Time: 150},
			{IsIncoming: true, Time: 90},
		},
	}
	if got := c.Unread(); got != 2 {
		t.Errorf("Unread() = %d, want 2", got)
	}
}

func TestDisplayName(t *testing.T) {
	c := &Contact{Number: 3}
	if c.DisplayName() != "#3" {
		t.Errorf("DisplayName() = %q", c.DisplayName())
	}
	c.PublicKey = "abcd"
	if c.DisplayName() != "abcd" {
		t.Errorf("DisplayName() = %q", c.DisplayName())
	}
	c.Name = "Alice"
	if c.DisplayName() != "Alice" {
		t.Errorf("DisplayName() = %q", c.DisplayName())
	}
}
