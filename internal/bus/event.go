package bus

import "time"

// Event kinds published by the client.
const (
	ChannelConnected     = "channel.connected"
	ChannelDisconnected  = "channel.disconnected"
	ChannelStatusChanged = "channel.status_changed"

	StateProfile  = "state.profile"
	StateContacts = "state.contacts"
	StateSettings = "state.settings"
	StateChat     = "state.chat"
	StateAvatar   = "state.avatar"

	NotifyShown     = "notify.shown"
	NotifyDismissed = "notify.dismissed"
	NoticeRaised    = "notice.raised"
)

// Event represents a client event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
