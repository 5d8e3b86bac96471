// Package apitest provides an in-memory fake of the messaging service for
// tests: the REST endpoints plus the /events websocket.
package apitest

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/wtox/internal/model"
)

// ToxAddressSize is the byte length of a friend address.
const ToxAddressSize = 38

// Request is one recorded API call.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

type failure struct {
	status  int
	code    string
	message string
}

// Server is a fake service. Exported state fields may be set before the
// first request; afterwards use the methods, which lock.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	profile  model.Profile
	contacts []*model.Contact
	settings model.Settings
	requests []Request
	failures map[string]failure
	holds    map[string]chan struct{}
	nextNum  uint32

	User     string
	Password string

	upgrader   websocket.Upgrader
	conns      map[*websocket.Conn]bool
	connected  chan struct{}
	handshakes []string
}

// New starts a fake service with a default profile and no contacts.
func New() *Server {
	s := &Server{
		profile: model.Profile{
			Username:  "WebTox User",
			StatusMsg: "WebToxing around...",
			ToxID:     strings.Repeat("AB", ToxAddressSize),
			Status:    model.StatusNone,
		},
		contacts: []*model.Contact{},
		settings: model.Settings{
			model.SettingAuthUser:             "user",
			model.SettingNotificationsEnabled: false,
			model.SettingAwayOnDisconnect:     false,
		},
		failures:  make(map[string]failure),
		holds:     make(map[string]chan struct{}),
		conns:     make(map[*websocket.Conn]bool),
		connected: make(chan struct{}, 16),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", s.handleAPI)
	mux.HandleFunc("/events", s.handleEvents)
	s.Server = httptest.NewServer(s.auth(mux))
	return s
}

// BaseURL returns the service URL with a trailing slash.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/"
}

// SetContacts replaces the server-side contact list.
func (s *Server) SetContacts(contacts ...*model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = nil
	for _, c := range contacts {
		cp := c.Clone()
		if cp.Chat == nil {
			cp.Chat = []model.Message{}
		}
		s.contacts = append(s.contacts, cp)
		if c.Number >= s.nextNum {
			s.nextNum = c.Number + 1
		}
	}
}

// SetProfile replaces the server-side profile.
func (s *Server) SetProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// SetSetting stores one settings value.
func (s *Server) SetSetting(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
}

// Profile returns the server-side profile.
func (s *Server) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Fail makes every request to path fail with the given status and body.
// status 0 clears the failure.
func (s *Server) Fail(path string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = failure{status: status, code: code, message: message}
}

// Hold blocks every request to path until the returned release func runs.
func (s *Server) Hold(path string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, path)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Requests returns the recorded calls, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls hit path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Connected receives once per accepted websocket connection.
func (s *Server) Connected() <-chan struct{} {
	return s.connected
}

// Handshakes returns the Authorization header of every accepted websocket
// upgrade, oldest first.
func (s *Server) Handshakes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.handshakes...)
}

// Push sends v as a JSON text frame to every connected client.
func (s *Server) Push(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.PushRaw(data)
}

// PushRaw sends raw bytes as a text frame to every connected client.
func (s *Server) PushRaw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

// DropConnections closes every websocket from the server side.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		wantUser, wantPass := s.User, s.Password
		s.mu.Unlock()
		if wantUser == "" && wantPass == "" {
			next.ServeHTTP(w, r)
			return
		}
		if c, err := r.Cookie("sessionid"); err == nil && c.Value == "fake-session" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != wantUser || pass != wantPass {
			w.Header().Set("WWW-Authenticate", `Basic realm="Authorization Required"`)
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "fake-session", Path: "/"})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	s.handshakes = append(s.handshakes, auth)
	s.mu.Unlock()
	select {
	case s.connected <- struct{}{}:
	default:
	}

	// Drain client frames until the connection goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) reject(w http.ResponseWriter, status int, code, message string) {
	data, _ := json.Marshal(map[string]string{"code": code, "message": message})
	http.Error(w, string(data), status)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	body := map[string]any{}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	s.mu.Lock()
	gate := s.holds[path]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: path, Body: body})

	if f, ok := s.failures[path]; ok {
		s.reject(w, f.status, f.code, f.message)
		return
	}

	switch path {
	case "api/get/profile":
		writeJSON(w, s.profile)
	case "api/get/contactlist":
		writeJSON(w, s.contacts)
	case "api/get/settings":
		writeJSON(w, s.settings)
	case "api/post/username":
		name, _ := body["username"].(string)
		if name == "" {
			s.reject(w, 422, "unknown", "An unknown error occoured.")
			return
		}
		s.profile.Username = name
	case "api/post/statusmessage":
		msg, _ := body["status_msg"].(string)
		if msg == "" {
			s.reject(w, 422, "unknown", "An unknown error occoured.")
			return
		}
		s.profile.StatusMsg = msg
	case "api/post/status":
		st, _ := body["status"].(string)
		s.profile.Status = model.UserStatus(st)
	case "api/post/message":
		text, _ := body["message"].(string)
		c := s.find(body["friend"])
		if c == nil || text == "" {
			s.reject(w, 422, "unknown", "An unknown error occoured.")
			return
		}
		c.Chat = append([]model.Message{{Message: text, Time: time.Now().UnixMilli()}}, c.Chat...)
	case "api/post/message_read_receipt":
		if c := s.find(body["friend"]); c != nil {
			c.LastMsgRead = time.Now().UnixMilli()
		}
	case "api/post/friend_request":
		id, _ := body["friend_id"].(string)
		msg, _ := body["message"].(string)
		raw, err := hex.DecodeString(id)
		if err != nil || len(raw) != ToxAddressSize {
			s.reject(w, 422, "invalid_toxid", "The Tox ID you entered is invalid.")
			return
		}
		if msg == "" {
			s.reject(w, 422, "no_message", "An invitation message is required.")
			return
		}
		num := s.nextNum
		s.nextNum++
		s.contacts = append(s.contacts, &model.Contact{
			Number:    num,
			PublicKey: strings.ToLower(id[:64]),
			Status:    model.StatusNone,
			Chat:      []model.Message{},
		})
		_, _ = w.Write([]byte(strconv.FormatUint(uint64(num), 10)))
	case "api/post/delete_friend":
		c := s.find(body["friend"])
		if c == nil {
			s.reject(w, 422, "unknown", "An unknown error occoured.")
			return
		}
		kept := s.contacts[:0]
		for _, ct := range s.contacts {
			if ct != c {
				kept = append(kept, ct)
			}
		}
		s.contacts = kept
	case "api/post/settings_auth_user":
		user, _ := body["username"].(string)
		s.settings[model.SettingAuthUser] = user
		if s.User != "" {
			s.User = user
		}
	case "api/post/settings_auth_pass":
		pass, _ := body["password"].(string)
		if s.Password != "" {
			s.Password = pass
		}
	case "api/post/keyValue":
		key, _ := body["key"].(string)
		value, _ := body["value"].(string)
		switch key {
		case "settings_notifications_enabled", "settings_away_on_disconnect":
			b, _ := strconv.ParseBool(value)
			s.settings[strings.TrimPrefix(key, "settings_")] = b
		default:
			s.reject(w, 422, "unknown", "An unknown error occoured.")
			return
		}
	default:
		s.reject(w, 422, "unknown", "An unknown error occoured.")
	}
}

func (s *Server) find(friend any) *model.Contact {
	f, ok := friend.(float64)
	if !ok {
		return nil
	}
	for _, c := range s.contacts {
		if c.Number == uint32(f) {
			return c
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
