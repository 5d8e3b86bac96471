package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL      = "https://localhost:8080/"
	DefaultUsername       = "user"
	DefaultReconnectDelay = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Global represents ~/.wtox/config.toml.
type Global struct {
	DefaultSession string `toml:"default_session"`
}

// Session represents ~/.wtox/sessions/<name>/config.toml.
type Session struct {
	ServerURL          string   `toml:"server_url"`
	Username           string   `toml:"username"`
	Password           string   `toml:"password"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	ReconnectDelay     Duration `toml:"reconnect_delay"`
	RequestTimeout     Duration `toml:"request_timeout"`
}

// Duration is a time.Duration stored as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults returns a session config pointing at a local service.
func Defaults() *Session {
	return &Session{
		ServerURL:      DefaultServerURL,
		Username:       DefaultUsername,
		ReconnectDelay: Duration{DefaultReconnectDelay},
		RequestTimeout: Duration{DefaultRequestTimeout},
	}
}

// Load reads a TOML file into v. Returns error if the file is missing.
func Load(path string, v any) error {
	_, err := toml.DecodeFile(path, v)
	return err
}

// LoadGlobal reads the global config.
func LoadGlobal(path string) (*Global, error) {
	var cfg Global
	if err := Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadSession reads a session config. Unset fields keep their defaults.
func LoadSession(path string) (*Session, error) {
	cfg := Defaults()
	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	cfg.fill()
	return cfg, nil
}

// LoadSessionOrDefault is LoadSession, but a missing file yields Defaults.
func LoadSessionOrDefault(path string) (*Session, error) {
	cfg, err := LoadSession(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

func (s *Session) fill() {
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}
	if s.ReconnectDelay.Duration <= 0 {
		s.ReconnectDelay.Duration = DefaultReconnectDelay
	}
	if s.RequestTimeout.Duration <= 0 {
		s.RequestTimeout.Duration = DefaultRequestTimeout
	}
}

// Save writes v as TOML to the given path, creating parent dirs as needed.
func Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(v)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
