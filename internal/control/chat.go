package control

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/notify"
	"go.uber.org/zap"
)

// FriendMessageTag is the notification tag of messages from a contact.
func FriendMessageTag(number uint32) string {
	return "friend_message" + strconv.FormatUint(uint64(number), 10)
}

// ConnectionStatusTag is the notification tag of a contact's presence.
func ConnectionStatusTag(number uint32) string {
	return "connection_status" + strconv.FormatUint(uint64(number), 10)
}

// SendMessage admits a message client-side, prepends it to the contact's
// chat and sends it without waiting. An empty text, an unknown contact or
// an offline recipient fail before any request is made.
func (c *Controller) SendMessage(ctx context.Context, number uint32, text string) error {
	if err := c.admit(number, text); err != nil {
		c.notes.Notice(notify.LevelWarn, admitMessage(err))
		return err
	}

	now := c.now().UnixMilli()
	c.store.PrependMessage(number, model.Message{
		IsIncoming: false,
		Message:    text,
		Time:       now,
	})
	// Replying counts as having read everything before it.
	c.store.MarkRead(number, now)

	c.background(ctx, func(ctx context.Context) {
		if err := c.api.SendMessage(ctx, number, text); err != nil {
			// The optimistic record stays; the service has the last word on
			// the next contact list fetch.
			c.logger.Warn("send message failed", zap.Uint32("friend", number), zap.Error(err))
		}
	})
	return nil
}

func (c *Controller) admit(number uint32, text string) error {
	if text == "" {
		return errs.ErrEmptyMessage
	}
	ct, ok := c.store.Contact(number)
	if !ok {
		return fmt.Errorf("contact %d: %w", number, errs.ErrNotFound)
	}
	if !ct.Online {
		return fmt.Errorf("%s: %w", ct.DisplayName(), errs.ErrRecipientOffline)
	}
	return nil
}

func admitMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrRecipientOffline):
		return "Your friend is offline, messages can't be delivered."
	case errors.Is(err, errs.ErrEmptyMessage):
		return "Type a message first."
	default:
		return err.Error()
	}
}

// SendMessageRead tells the service that everything up to now was read and,
// on success, moves the local read watermark.
func (c *Controller) SendMessageRead(ctx context.Context, number uint32) error {
	if _, ok := c.store.Contact(number); !ok {
		return fmt.Errorf("contact %d: %w", number, errs.ErrNotFound)
	}
	if err := c.api.SendReadReceipt(ctx, number); err != nil {
		c.logger.Warn("read receipt failed", zap.Uint32("friend", number), zap.Error(err))
		return fmt.Errorf("read receipt: %w", err)
	}
	c.store.MarkRead(number, c.now().UnixMilli())
	return nil
}

// ShowChat makes number the active contact, clears its unseen flag and its
// pending message notification, and sends a read receipt in the background.
func (c *Controller) ShowChat(ctx context.Context, number uint32) error {
	if !c.store.SetActive(number) {
		return fmt.Errorf("contact %d: %w", number, errs.ErrNotFound)
	}
	c.store.SetNotify(number, false)
	c.notes.Dismiss(FriendMessageTag(number))
	c.background(ctx, func(ctx context.Context) {
		_ = c.SendMessageRead(ctx, number)
	})
	return nil
}

// HideChat leaves the chat view.
func (c *Controller) HideChat() {
	c.store.ClearActive()
}
