package router

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// CommandRouter registers slash commands on the bot with summary
// logging applied uniformly.
type CommandRouter struct {
	routes map[string]tele.HandlerFunc
	order  []string
}

func NewCommandRouter() *CommandRouter {
	return &CommandRouter{routes: make(map[string]tele.HandlerFunc)}
}

// Handle binds a command ("/start") to a handler. Duplicate
// registration is a wiring bug and panics at startup.
func (r *CommandRouter) Handle(command string, h tele.HandlerFunc) {
	command = strings.TrimSpace(command)
	if !strings.HasPrefix(command, "/") {
		panic(fmt.Sprintf("router: command %q must start with /", command))
	}
	if _, dup := r.routes[command]; dup {
		panic(fmt.Sprintf("router: duplicate command %q", command))
	}
	r.routes[command] = h
	r.order = append(r.order, command)
}

// Attach wires every registered command onto the bot.
func (r *CommandRouter) Attach(bot *tele.Bot) {
	for _, command := range r.order {
		name := "cmd" + command
		bot.Handle(command, WithSummary(name, r.routes[command]))
	}
}

// Commands returns registered commands in registration order.
func (r *CommandRouter) Commands() []string {
	return append([]string(nil), r.order...)
}

// Lookup returns the handler bound to the command, without the
// summary wrapper.
func (r *CommandRouter) Lookup(command string) (tele.HandlerFunc, bool) {
	h, ok := r.routes[command]
	return h, ok
}
