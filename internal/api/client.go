// Package api is the request/response client of the messaging service.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/model"
	"go.uber.org/zap"
)

// Request paths, relative to the server URL.
const (
	PathProfile        = "api/get/profile"
	PathContactList    = "api/get/contactlist"
	PathSettings       = "api/get/settings"
	PathUsername       = "api/post/username"
	PathStatusMessage  = "api/post/statusmessage"
	PathStatus         = "api/post/status"
	PathMessage        = "api/post/message"
	PathReadReceipt    = "api/post/message_read_receipt"
	PathFriendRequest  = "api/post/friend_request"
	PathDeleteFriend   = "api/post/delete_friend"
	PathAuthUser       = "api/post/settings_auth_user"
	PathAuthPass       = "api/post/settings_auth_pass"
	PathKeyValue       = "api/post/keyValue"
	PathEvents         = "events"
	avatarPathTemplate = "img/avatars/%s.png"
)

// Keys accepted by the keyValue endpoint.
const (
	KeyNotificationsEnabled = "settings_notifications_enabled"
	KeyAwayOnDisconnect     = "settings_away_on_disconnect"
)

// Client issues requests against one service instance. It is safe for
// concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger

	mu       sync.RWMutex
	username string
	password string
}

// New creates a client from a session config.
func New(cfg *config.Session, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base: base,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.RequestTimeout.Duration,
		},
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger.Named("api"),
	}, nil
}

// BaseURL returns a copy of the server URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Jar returns the cookie jar shared with the push channel.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// TLSConfig returns the TLS settings shared with the push channel.
func (c *Client) TLSConfig() *tls.Config {
	if t, ok := c.http.Transport.(*http.Transport); ok && t.TLSClientConfig != nil {
		return t.TLSClientConfig.Clone()
	}
	return nil
}

// AuthHeader returns the headers that authenticate a request.
func (c *Client) AuthHeader() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := http.Header{}
	if c.username != "" || c.password != "" {
		req := &http.Request{Header: h}
		req.SetBasicAuth(c.username, c.password)
	}
	return h
}

// EventsURL is the websocket URL of the push channel.
func (c *Client) EventsURL() *url.URL {
	u := c.resolve(PathEvents)
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	return u
}

// AvatarURL returns the avatar image URL of a contact. token is appended
// as a query so that a bumped token forces a reload.
func (c *Client) AvatarURL(publicKey string, token int64) string {
	u := c.resolve(fmt.Sprintf(avatarPathTemplate, publicKey))
	u.RawQuery = strconv.FormatInt(token, 10)
	return u.String()
}

func (c *Client) resolve(path string) *url.URL {
	return c.base.ResolveReference(&url.URL{Path: path})
}

// GetProfile fetches the local user's profile.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.get(ctx, PathProfile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetContactList fetches all contacts in server order.
func (c *Client) GetContactList(ctx context.Context) ([]*model.Contact, error) {
	var contacts []*model.Contact
	if err := c.get(ctx, PathContactList, &contacts); err != nil {
		return nil, err
	}
	for _, ct := range contacts {
		if ct.Chat == nil {
			ct.Chat = []model.Message{}
		}
	}
	return contacts, nil
}

// GetSettings fetches the settings mapping.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	s := model.Settings{}
	if err := c.get(ctx, PathSettings, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetUsername changes the display name.
func (c *Client) SetUsername(ctx context.Context, username string) error {
	return c.post(ctx, PathUsername, map[string]any{"username": username})
}

// SetStatusMessage changes the status text.
func (c *Client) SetStatusMessage(ctx context.Context, statusMsg string) error {
	return c.post(ctx, PathStatusMessage, map[string]any{"status_msg": statusMsg})
}

// SetStatus changes the presence state.
func (c *Client) SetStatus(ctx context.Context, status model.UserStatus) error {
	return c.post(ctx, PathStatus, map[string]any{"status": status})
}

// SendMessage sends a chat message to a contact.
func (c *Client) SendMessage(ctx context.Context, friend uint32, text string) error {
	return c.post(ctx, PathMessage, map[string]any{"friend": friend, "message": text})
}

// SendReadReceipt marks the contact's messages as read up to now.
func (c *Client) SendReadReceipt(ctx context.Context, friend uint32) error {
	return c.post(ctx, PathReadReceipt, map[string]any{"friend": friend})
}

// SendFriendRequest asks a new contact to accept us.
func (c *Client) SendFriendRequest(ctx context.Context, req model.FriendRequest) error {
	return c.post(ctx, PathFriendRequest, req)
}

// DeleteFriend removes a contact.
func (c *Client) DeleteFriend(ctx context.Context, friend uint32) error {
	return c.post(ctx, PathDeleteFriend, map[string]any{"friend": friend})
}

// SetAuthUser changes the username required by the service.
func (c *Client) SetAuthUser(ctx context.Context, username string) error {
	return c.post(ctx, PathAuthUser, map[string]any{"username": username})
}

// SetAuthPass changes the password required by the service.
func (c *Client) SetAuthPass(ctx context.Context, password string) error {
	return c.post(ctx, PathAuthPass, map[string]any{"password": password})
}

// SetKeyValue stores a settings flag.
func (c *Client) SetKeyValue(ctx context.Context, key, value string) error {
	return c.post(ctx, PathKeyValue, map[string]any{"key": key, "value": value})
}

// UpdateCredentials switches the basic auth credentials used by later
// requests, after the service accepted a change.
func (c *Client) UpdateCredentials(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if username != "" {
		c.username = username
	}
	if password != "" {
		c.password = password
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, data, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path).String(), r)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	for k, v := range c.AuthHeader() {
		req.Header[k] = v
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
