package tui

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wtox/internal/tui/ui"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	name, args, _ := strings.Cut(input, " ")
	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}
}

// commandHelp lists the prompt commands for the help page.
var commandHelp = []ui.MenuHint{
	{Key: ":name <text>", Description: "Change your name"},
	{Key: ":msg <text>", Description: "Change your status message"},
	{Key: ":status online|away|busy", Description: "Change your presence"},
	{Key: ":add <tox id> [message]", Description: "Send a friend request"},
	{Key: ":delete [number]", Description: "Remove a friend (selected by default)"},
	{Key: ":notifications on|off", Description: "Toggle desktop notifications"},
	{Key: ":away on|off", Description: "Toggle away on disconnect"},
	{Key: ":dismiss [all]", Description: "Dismiss the latest notice"},
	{Key: ":help, :h", Description: "Show this help"},
	{Key: ":quit, :q", Description: "Quit"},
}

// ParseToggle reads an on/off argument.
func ParseToggle(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}
