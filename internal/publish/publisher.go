// Package publish maintains the single live broadcast message per
// campaign or announcement: first publish sends and stores the anchor,
// later publishes edit in place, a failed edit falls back to a fresh
// send with the anchor overwritten.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/internal/store"
)

// ChannelAPI is the slice of the bot client the publisher calls.
// *tele.Bot satisfies it.
type ChannelAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	EditMedia(msg tele.Editable, media tele.Inputtable, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	ChatByUsername(name string) (*tele.Chat, error)
}

// Anchors is the slice of the store the publisher writes.
type Anchors interface {
	SetCampaignAnchor(ctx context.Context, id, messageID int64) error
	SetAnnouncementAnchor(ctx context.Context, id, messageID int64) error
	DeactivateCampaign(ctx context.Context, id int64) error
}

// Result reports where the content ended up.
type Result struct {
	MessageID int64
	// Fallback is true when an edit attempt failed and a fresh message
	// replaced the anchor; the operator is told about it.
	Fallback bool
}

// Publisher owns the channel anchor lifecycle.
type Publisher struct {
	api     ChannelAPI
	anchors Anchors
	channel string

	mu     sync.Mutex
	chatID int64
}

// New creates a publisher for the channel addressed by "@username".
func New(api ChannelAPI, anchors Anchors, channelUsername string) *Publisher {
	return &Publisher{api: api, anchors: anchors, channel: channelUsername}
}

// anchorRef lets a stored message id satisfy tele.Editable.
type anchorRef struct {
	messageID int64
	chatID    int64
}

func (a anchorRef) MessageSig() (string, int64) {
	return strconv.FormatInt(a.messageID, 10), a.chatID
}

// channelChatID resolves and caches the channel's numeric chat id.
// Edits and deletes need it; a username alone only works for sends.
func (p *Publisher) channelChatID(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chatID != 0 {
		return p.chatID, nil
	}
	chat, err := p.api.ChatByUsername(p.channel)
	if err != nil {
		return 0, fmt.Errorf("publish: resolve channel %s: %w", p.channel, err)
	}
	p.chatID = chat.ID
	return p.chatID, nil
}

// PublishCampaign sends or refreshes the campaign's channel message
// and persists the anchor.
func (p *Publisher) PublishCampaign(ctx context.Context, c *store.Campaign, caption string, markup *tele.ReplyMarkup) (Result, error) {
	var anchor int64
	if c.HasAnchor() {
		anchor = c.Anchor.Int64
	}
	res, err := p.publishOrEdit(ctx, anchor, c.MediaRef, caption, markup)
	if err != nil {
		return res, err
	}
	if err := p.anchors.SetCampaignAnchor(ctx, c.ID, res.MessageID); err != nil {
		return res, err
	}
	logger.Info(ctx, "publish", "campaign_published",
		slog.Int64("campaign_id", c.ID),
		slog.Int64("anchor", res.MessageID),
		slog.Bool("fallback", res.Fallback),
	)
	return res, nil
}

// PublishAnnouncement sends or refreshes the announcement's channel
// message and persists the anchor.
func (p *Publisher) PublishAnnouncement(ctx context.Context, a *store.Announcement, caption string, markup *tele.ReplyMarkup) (Result, error) {
	var anchor int64
	if a.HasAnchor() {
		anchor = a.Anchor.Int64
	}
	res, err := p.publishOrEdit(ctx, anchor, a.MediaRef, caption, markup)
	if err != nil {
		return res, err
	}
	if err := p.anchors.SetAnnouncementAnchor(ctx, a.ID, res.MessageID); err != nil {
		return res, err
	}
	logger.Info(ctx, "publish", "announcement_published",
		slog.Int64("announcement_id", a.ID),
		slog.Int64("anchor", res.MessageID),
		slog.Bool("fallback", res.Fallback),
	)
	return res, nil
}

func (p *Publisher) publishOrEdit(ctx context.Context, anchor int64, mediaRef, caption string, markup *tele.ReplyMarkup) (Result, error) {
	photo := &tele.Photo{
		File:    tele.File{FileID: mediaRef},
		Caption: caption,
	}
	opts := []interface{}{&tele.SendOptions{ParseMode: tele.ModeHTML}}
	if markup != nil {
		opts = append(opts, markup)
	}

	if anchor != 0 {
		chatID, err := p.channelChatID(ctx)
		if err == nil {
			msg, editErr := p.api.EditMedia(anchorRef{messageID: anchor, chatID: chatID}, photo, opts...)
			if editErr == nil {
				return Result{MessageID: int64(msg.ID)}, nil
			}
			logger.Warn(ctx, "publish", "edit_failed",
				slog.Int64("anchor", anchor),
				slog.String("err", logger.SanitizeLimit(editErr.Error(), 200)),
			)
		} else {
			logger.Warn(ctx, "publish", "channel_resolve_failed",
				slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
			)
		}
		// Stale anchor or lost edit rights: replace with a fresh send.
		msg, sendErr := p.api.Send(channelName(p.channel), photo, opts...)
		if sendErr != nil {
			return Result{}, fmt.Errorf("publish: fallback send: %w", sendErr)
		}
		return Result{MessageID: int64(msg.ID), Fallback: true}, nil
	}

	msg, err := p.api.Send(channelName(p.channel), photo, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("publish: send: %w", err)
	}
	return Result{MessageID: int64(msg.ID)}, nil
}

// RetractCampaign deletes the anchored channel message and marks the
// campaign inactive. Deletion failure only logs a warning: the row is
// deactivated regardless, database consistency wins over channel
// consistency.
func (p *Publisher) RetractCampaign(ctx context.Context, c *store.Campaign) error {
	if c.HasAnchor() {
		chatID, err := p.channelChatID(ctx)
		if err == nil {
			err = p.api.Delete(anchorRef{messageID: c.Anchor.Int64, chatID: chatID})
		}
		if err != nil {
			logger.Warn(ctx, "publish", "retract_delete_failed",
				slog.Int64("campaign_id", c.ID),
				slog.Int64("anchor", c.Anchor.Int64),
				slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
			)
		}
	}
	if err := p.anchors.DeactivateCampaign(ctx, c.ID); err != nil {
		return err
	}
	logger.Info(ctx, "publish", "campaign_retracted",
		slog.Int64("campaign_id", c.ID),
	)
	return nil
}

// channelName addresses the channel by public username for sends.
type channelName string

func (c channelName) Recipient() string { return string(c) }
