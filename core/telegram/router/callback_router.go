package router

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/callbacks"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// CallbackRouter dispatches inline button presses by decoded key.
type CallbackRouter struct {
	routes map[string]tele.HandlerFunc
}

func NewCallbackRouter() *CallbackRouter {
	return &CallbackRouter{routes: make(map[string]tele.HandlerFunc)}
}

// Handle binds a callback key to a handler.
func (r *CallbackRouter) Handle(key string, h tele.HandlerFunc) {
	if _, dup := r.routes[key]; dup {
		panic(fmt.Sprintf("router: duplicate callback key %q", key))
	}
	r.routes[key] = h
}

// Attach registers the dispatcher on tele.OnCallback.
func (r *CallbackRouter) Attach(bot *tele.Bot) {
	bot.Handle(tele.OnCallback, r.dispatch)
}

func (r *CallbackRouter) dispatch(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	key, _ := callbacks.Decode(cb.Data)
	h, ok := r.routes[key]
	if !ok {
		// Stale buttons from messages published by older versions.
		logger.Warn(helpers.Ctx(c), "tg", "callback_unrouted",
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
		)
		helpers.Answer(c, "")
		return nil
	}
	return WithSummary("cb:"+key, h)(c)
}
