// Package notify collects the notifications raised by push events and the
// dismissible notices raised by failed commands.
package notify

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wtox/internal/bus"
	"go.uber.org/zap"
)

// maxPending bounds the queue; the oldest entries fall off first.
const maxPending = 64

// Level grades a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is one pending entry. Contact is set when activating the
// entry should open that contact's chat.
type Notification struct {
	ID      string
	Tag     string
	Title   string
	Body    string
	Level   Level
	Contact *uint32
	Time    time.Time
}

// Center holds pending notifications, at most one per tag.
type Center struct {
	mu      sync.Mutex
	pending []Notification
	bus     *bus.Bus
	logger  *zap.Logger
}

// New creates a notification centre. b may be nil.
func New(b *bus.Bus, logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{bus: b, logger: logger.Named("notify")}
}

// Show queues a notification. A pending entry with the same tag is replaced.
// An empty title is dropped and Show reports false.
func (c *Center) Show(title, body, tag string, contact *uint32) bool {
	if strings.TrimSpace(title) == "" {
		c.logger.Debug("dropping notification without title", zap.String("tag", tag))
		return false
	}
	n := Notification{
		ID:      uuid.NewString(),
		Tag:     tag,
		Title:   title,
		Body:    body,
		Level:   LevelInfo,
		Contact: contact,
		Time:    time.Now(),
	}
	if n.Tag == "" {
		n.Tag = n.ID
	}
	c.push(n)
	c.bus.Emit(bus.NotifyShown, n)
	return true
}

// Notice queues a dismissible error or warning for the user.
func (c *Center) Notice(level Level, message string) Notification {
	id := uuid.NewString()
	n := Notification{
		ID:    id,
		Tag:   "notice:" + id,
		Title: level.String(),
		Body:  message,
		Level: level,
		Time:  time.Now(),
	}
	c.push(n)
	if level >= LevelError {
		c.logger.Error("notice", zap.String("message", message))
	} else {
		c.logger.Warn("notice", zap.String("message", message))
	}
	c.bus.Emit(bus.NoticeRaised, n)
	return n
}

func (c *Center) push(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p.Tag == n.Tag {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.pending = append(c.pending, n)
	if len(c.pending) > maxPending {
		c.pending = c.pending[len(c.pending)-maxPending:]
	}
}

// Dismiss removes the entry with the given tag or id.
func (c *Center) Dismiss(key string) bool {
	c.mu.Lock()
	var removed *Notification
	for i, p := range c.pending {
		if p.Tag == key || p.ID == key {
			removed = &p
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	if removed == nil {
		return false
	}
	c.bus.Emit(bus.NotifyDismissed, *removed)
	return true
}

// DismissAll clears the queue.
func (c *Center) DismissAll() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.bus.Emit(bus.NotifyDismissed, nil)
}

// Pending returns the queued entries, oldest first.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.pending...)
}

// Latest returns the newest entry.
func (c *Center) Latest() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return Notification{}, false
	}
	return c.pending[len(c.pending)-1], true
}
