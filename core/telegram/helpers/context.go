// Package helpers bridges telebot's per-update context and the
// standard context.Context carrying correlation fields.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
)

const ctxStoreKey = "core.ctx"

// Attach builds a context.Context for the update, stores it on the
// telebot context and returns it. Called once by the logging
// middleware; handlers read it back with Ctx.
func Attach(c tele.Context) context.Context {
	ctx := Build(c)
	c.Set(ctxStoreKey, ctx)
	return ctx
}

// Ctx returns the context attached by the middleware chain, or builds
// a fresh one when the update bypassed the chain.
func Ctx(c tele.Context) context.Context {
	if v := c.Get(ctxStoreKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return Build(c)
}

// Build derives a context with RID and identity fields from the update.
func Build(c tele.Context) context.Context {
	ctx := context.Background()

	updateID := c.Update().ID
	var userID, chatID int64
	if sender := c.Sender(); sender != nil {
		userID = sender.ID
	}
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}

	rid := logger.BuildRID(updateID, chatID, userID)
	ctx = logger.WithRID(ctx, rid)
	ctx = logger.WithUpdateID(ctx, updateID)
	if userID != 0 {
		ctx = logger.WithUserID(ctx, userID)
	}
	if chatID != 0 {
		ctx = logger.WithChatID(ctx, chatID)
	}
	if logger.L != nil {
		ctx = logger.WithLogger(ctx, logger.L.With("rid", rid))
	}
	return ctx
}

// WithHandler augments the stored context with the resolved handler
// name once routing picked it.
func WithHandler(c tele.Context, name string) context.Context {
	ctx := logger.WithHandler(Ctx(c), name)
	c.Set(ctxStoreKey, ctx)
	return ctx
}
