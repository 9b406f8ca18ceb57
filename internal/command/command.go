// Package command holds the command registry and the dispatcher. Each
// command is a descriptor carrying its required authority; the dispatcher
// enforces authority uniformly, so handlers never repeat permission checks.
package command

import (
	"sort"
	"strings"
)

// Authority is the privilege a command requires before its handler runs.
type Authority int

const (
	// AuthorityNone commands run for anyone.
	AuthorityNone Authority = iota
	// AuthorityGroupAdmin commands require the bot to be a group admin and
	// the sender to be a group admin or the owner.
	AuthorityGroupAdmin
	// AuthorityOwner commands run only for the configured bot owner.
	AuthorityOwner
)

// HandlerFunc executes a command.
type HandlerFunc func(c *Context) error

// Command describes one chat command.
type Command struct {
	// Sort orders commands in the help listing.
	Sort        int
	Name        string
	Aliases     []string
	Category    string
	Description string
	Authority   Authority
	// GroupOnly commands reject invocations from direct chats.
	GroupOnly bool
	Handler   HandlerFunc
}

var commandRegistry = map[string]*Command{}

// Register adds a command under its name and every alias.
func Register(cmd *Command) {
	commandRegistry[strings.ToLower(cmd.Name)] = cmd
	for _, alias := range cmd.Aliases {
		commandRegistry[strings.ToLower(alias)] = cmd
	}
}

// Get looks a command up by name or alias, case-insensitively.
func Get(name string) (*Command, bool) {
	cmd, ok := commandRegistry[strings.ToLower(name)]
	return cmd, ok
}

// All returns every registered command once, in help order.
func All() []*Command {
	var list []*Command
	seen := make(map[string]bool)
	for _, cmd := range commandRegistry {
		if !seen[cmd.Name] {
			list = append(list, cmd)
			seen[cmd.Name] = true
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Sort != list[j].Sort {
			return list[i].Sort < list[j].Sort
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Help categories, in listing order.
const (
	catCore        = "Core Commands"
	catAdmin       = "Admin Commands (Group Only)"
	catContent     = "Content Management"
	catOwner       = "Owner Commands"
	catPlaceholder = "Placeholder Commands"
)
