package models

import "strings"

// CommandType enumerates the interactive shell commands.
type CommandType string

const (
	CommandForm    CommandType = "form"
	CommandName    CommandType = "name"
	CommandDate    CommandType = "date"
	CommandSubmit  CommandType = "submit"
	CommandAdd     CommandType = "add"
	CommandDelete  CommandType = "delete"
	CommandRefresh CommandType = "refresh"
	CommandHelp    CommandType = "help"
	CommandQuit    CommandType = "quit"
	CommandUnknown CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"form":    CommandForm,
	"new":     CommandForm,
	"toggle":  CommandForm,
	"name":    CommandName,
	"date":    CommandDate,
	"submit":  CommandSubmit,
	"add":     CommandAdd,
	"delete":  CommandDelete,
	"rm":      CommandDelete,
	"refresh": CommandRefresh,
	"ls":      CommandRefresh,
	"help":    CommandHelp,
	"?":       CommandHelp,
	"quit":    CommandQuit,
	"exit":    CommandQuit,
}

// Command represents a parsed line typed into the shell.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// Rest joins the arguments back into free text, e.g. a food name.
func (c Command) Rest() string {
	return strings.Join(c.Args, " ")
}

// ParseCommand derives a Command from a line of input. Only the command word
// is case-insensitive; arguments keep their case.
func ParseCommand(line string) Command {
	cmd := Command{Raw: line, Type: CommandUnknown}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
