package session

import "github.com/matheus3301/wtox/internal/config"

const DefaultSessionName = "main"

// Resolve determines the active session name using precedence:
// 1. flagOverride (--session flag)
// 2. global config default_session
// 3. "main"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	cfg, err := config.LoadGlobal(GlobalConfigPath())
	if err == nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}

// LoadConfig reads the session config, falling back to defaults when absent.
func LoadConfig(name string) (*config.Session, error) {
	return config.LoadSessionOrDefault(ConfigPath(name))
}
