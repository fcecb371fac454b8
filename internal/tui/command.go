package tui

import "strings"

// Command represents a parsed prompt command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// Split returns the first argument and the remainder, e.g. the phone
// number and the reason of "report 0712345678 took my deposit".
func (c Command) Split() (first, rest string) {
	first, rest, _ = strings.Cut(c.Args, " ")
	return first, strings.TrimSpace(rest)
}

// commandHelp is shown for an unknown command.
const commandHelp = "commands: start, stop, check <phone>, report <phone> <reason>, share <phone>, group <name>"
