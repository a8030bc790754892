package router

import (
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/state"
)

// MessageRouter dispatches plain messages. An active flow step gets
// first claim on text, photo and contact updates; otherwise text is
// matched against reply-keyboard button labels, then the fallback.
type MessageRouter struct {
	manager    state.Manager
	flows      *state.Registry
	textRoutes map[string]tele.HandlerFunc
	fallback   tele.HandlerFunc
}

func NewMessageRouter(manager state.Manager, flows *state.Registry) *MessageRouter {
	return &MessageRouter{
		manager:    manager,
		flows:      flows,
		textRoutes: make(map[string]tele.HandlerFunc),
	}
}

// HandleText binds an exact button label to a handler.
func (r *MessageRouter) HandleText(label string, h tele.HandlerFunc) {
	if _, dup := r.textRoutes[label]; dup {
		panic(fmt.Sprintf("router: duplicate text route %q", label))
	}
	r.textRoutes[label] = h
}

// Fallback handles text that matched neither a flow step nor a button.
func (r *MessageRouter) Fallback(h tele.HandlerFunc) {
	r.fallback = h
}

// Attach registers the message endpoints on the bot.
func (r *MessageRouter) Attach(bot *tele.Bot) {
	bot.Handle(tele.OnText, r.onText)
	bot.Handle(tele.OnPhoto, r.onMedia)
	bot.Handle(tele.OnDocument, r.onMedia)
	bot.Handle(tele.OnContact, r.onMedia)
}

func (r *MessageRouter) onText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	conv := r.manager.Get(sender.ID)

	if conv.InFlow() {
		handled, err := r.dispatchFlow(c, conv)
		if handled {
			return err
		}
	}

	label := strings.TrimSpace(c.Text())
	if h, ok := r.textRoutes[label]; ok {
		return WithSummary("btn:"+label, h)(c)
	}
	if r.fallback != nil {
		return WithSummary("fallback", r.fallback)(c)
	}
	return nil
}

func (r *MessageRouter) onMedia(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	conv := r.manager.Get(sender.ID)
	if !conv.InFlow() {
		// Media outside a flow carries no meaning here.
		logger.Debug(helpers.Ctx(c), "tg", "media_ignored")
		return nil
	}
	_, err := r.dispatchFlow(c, conv)
	return err
}

func (r *MessageRouter) dispatchFlow(c tele.Context, conv *state.Conversation) (bool, error) {
	name := "flow:" + string(conv.Flow) + "/" + string(conv.Step)
	handled := false
	err := WithSummary(name, func(c tele.Context) error {
		ctx := helpers.Ctx(c)
		var dispatchErr error
		handled, dispatchErr = r.flows.Dispatch(c, conv)
		if !handled {
			logger.Warn(ctx, "flow", "step_unrouted",
				slog.String("flow", string(conv.Flow)),
				slog.String("step", string(conv.Step)),
			)
		}
		return dispatchErr
	})(c)
	return handled, err
}
