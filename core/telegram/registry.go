package telegram

import (
	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/router"
	"github.com/bazumi/promobot/core/telegram/state"
)

// Registry collects every route before the bot starts. Application
// code registers handlers on it during bootstrap; Wire attaches them
// all at once so registration order never depends on bot lifecycle.
type Registry struct {
	Commands  *router.CommandRouter
	Callbacks *router.CallbackRouter
	Messages  *router.MessageRouter
	Flows     *state.Registry
	States    state.Manager
}

// NewRegistry builds an empty registry around the given state manager.
func NewRegistry(states state.Manager) *Registry {
	flows := state.NewRegistry()
	return &Registry{
		Commands:  router.NewCommandRouter(),
		Callbacks: router.NewCallbackRouter(),
		Messages:  router.NewMessageRouter(states, flows),
		Flows:     flows,
		States:    states,
	}
}

// Wire attaches every collected route to the bot.
func (r *Registry) Wire(bot *tele.Bot) {
	r.Commands.Attach(bot)
	r.Callbacks.Attach(bot)
	r.Messages.Attach(bot)
}
