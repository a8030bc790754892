package flow

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/store"
)

// StartAnnouncementCreate enters the announcement authoring flow.
func (s *Service) StartAnnouncementCreate(c tele.Context) error {
	s.states.StartFlow(c.Sender().ID, state.FlowAnnouncementCreate, state.StepAwaitPhoto)
	helpers.Answer(c, "")
	return c.Send(textAskPhoto)
}

func (s *Service) announcePhoto(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotPhoto, msg.ID) {
		s.logDuplicate(c, conv, state.SlotPhoto)
		return nil
	}
	fileID, ok := photoInput(msg)
	if !ok {
		conv.CloseSlot(state.SlotPhoto)
		return c.Send(textPhotoExpected)
	}
	conv.Draft.PhotoFileID = fileID
	conv.Advance(state.StepAwaitTitle)
	return c.Send(textAskTitle)
}

func (s *Service) announceTitle(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotTitle, msg.ID) {
		s.logDuplicate(c, conv, state.SlotTitle)
		return nil
	}
	title := strings.TrimSpace(msg.Text)
	if title == "" {
		conv.CloseSlot(state.SlotTitle)
		return c.Send(textAskTitle)
	}
	conv.Draft.Title = title
	conv.Advance(state.StepAwaitBody)
	return c.Send(textAskBody)
}

func (s *Service) announceBody(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotBody, msg.ID) {
		s.logDuplicate(c, conv, state.SlotBody)
		return nil
	}
	body := strings.TrimSpace(msg.Text)
	if body == "" {
		conv.CloseSlot(state.SlotBody)
		return c.Send(textAskBody)
	}
	conv.Draft.Body = body
	conv.Advance(state.StepPreview)

	if err := c.Send(textPreviewAnnounce); err != nil {
		return err
	}
	preview := s.draftAnnouncement(conv)
	return helpers.ReplyPhoto(c, preview.MediaRef, AnnouncementCaption(preview),
		PreviewMarkup(CbAnnouncePublish, CbAnnounceRestart))
}

// AnnouncePublish commits the draft: create the row, publish to the
// channel, then fan out to every known user privately.
func (s *Service) AnnouncePublish(c tele.Context) error {
	userID := c.Sender().ID
	conv := s.states.Get(userID)
	if conv.Flow != state.FlowAnnouncementCreate || conv.Step != state.StepPreview {
		helpers.Answer(c, "")
		return nil
	}
	if !conv.Begin(state.SlotDecision, messageID(c)) {
		s.logDuplicate(c, conv, state.SlotDecision)
		helpers.Answer(c, "")
		return nil
	}

	ctx := helpers.Ctx(c)
	draft := s.draftAnnouncement(conv)
	id, err := s.records.CreateAnnouncement(ctx, draft.MediaRef, draft.Title, draft.Body)
	if err != nil {
		conv.CloseSlot(state.SlotDecision)
		helpers.Answer(c, "")
		return c.Send(textPublishFailed)
	}
	draft.ID = id

	caption := AnnouncementCaption(draft)
	res, err := s.publisher.PublishAnnouncement(ctx, draft, caption, nil)
	if err != nil {
		conv.CloseSlot(state.SlotDecision)
		helpers.Answer(c, "")
		return c.Send(textPublishFailed)
	}

	s.states.End(userID)
	helpers.Answer(c, "")
	note := textPublished
	if res.Fallback {
		note = textPublishFallback
	}
	if err := c.Send(note); err != nil {
		return err
	}

	recipients, err := s.records.KnownUserIDs(ctx)
	if err != nil {
		return err
	}
	sent, failed := s.broadcaster.Broadcast(ctx, draft, caption, recipients)
	if err := c.Send(fmt.Sprintf(textBroadcastDone, sent, failed)); err != nil {
		return err
	}
	if s.adminMenu != nil {
		return s.adminMenu(c)
	}
	return nil
}

// AnnounceRestart throws the draft away and restarts at the photo step.
func (s *Service) AnnounceRestart(c tele.Context) error {
	userID := c.Sender().ID
	conv := s.states.Get(userID)
	if conv.Flow != state.FlowAnnouncementCreate {
		helpers.Answer(c, "")
		return nil
	}
	s.states.StartFlow(userID, state.FlowAnnouncementCreate, state.StepAwaitPhoto)
	helpers.Answer(c, "")
	return c.Send(textAskPhoto)
}

func (s *Service) draftAnnouncement(conv *state.Conversation) *store.Announcement {
	return &store.Announcement{
		ID:       conv.Draft.AnnouncementID,
		MediaRef: conv.Draft.PhotoFileID,
		Title:    conv.Draft.Title,
		Body:     conv.Draft.Body,
	}
}
