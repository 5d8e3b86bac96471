package session

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/matheus3301/wtox/internal/config"
)

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name conforms to session naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid session name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// ValidateConfig checks the fields a client cannot start without.
func ValidateConfig(cfg *config.Session) error {
	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", cfg.ServerURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid server_url %q: scheme must be http or https", cfg.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server_url %q: missing host", cfg.ServerURL)
	}
	return nil
}
