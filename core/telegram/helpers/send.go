package helpers

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
)

// defaultSendOptions applies HTML parse mode to every outbound message.
var defaultSendOptions = &tele.SendOptions{ParseMode: tele.ModeHTML}

// Reply sends an HTML-mode message to the update's chat.
func Reply(c tele.Context, text string, extra ...interface{}) error {
	opts := append([]interface{}{defaultSendOptions}, extra...)
	return c.Send(text, opts...)
}

// ReplyPhoto sends a photo with an HTML-mode caption.
func ReplyPhoto(c tele.Context, fileID, caption string, extra ...interface{}) error {
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	opts := append([]interface{}{defaultSendOptions}, extra...)
	return c.Send(photo, opts...)
}

// EditOrSend edits the message behind a callback in place, falling
// back to a fresh send when the message is too old to edit.
func EditOrSend(c tele.Context, what interface{}, extra ...interface{}) error {
	opts := append([]interface{}{defaultSendOptions}, extra...)
	if c.Callback() == nil {
		return c.Send(what, opts...)
	}
	if err := c.Edit(what, opts...); err != nil {
		logger.Debug(Ctx(c), "tg", "edit_fallback",
			slog.String("err", logger.SanitizeLimit(err.Error(), 120)),
		)
		return c.Send(what, opts...)
	}
	return nil
}

// Answer acknowledges a callback query so the client stops the
// button spinner. Errors are logged, not propagated, since the
// acknowledgement is cosmetic.
func Answer(c tele.Context, text string) {
	if c.Callback() == nil {
		return
	}
	resp := &tele.CallbackResponse{}
	if text != "" {
		resp.Text = text
	}
	if err := c.Respond(resp); err != nil {
		logger.Debug(Ctx(c), "tg", "callback_answer_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 120)),
		)
	}
}
