package flow

import (
	"errors"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/store"
)

// StartCampaignCreate enters the campaign authoring flow.
func (s *Service) StartCampaignCreate(c tele.Context) error {
	s.states.StartFlow(c.Sender().ID, state.FlowCampaignCreate, state.StepAwaitPhoto)
	helpers.Answer(c, "")
	return c.Send(textAskPhoto)
}

// StartCampaignEdit enters the edit flow seeded with the active
// campaign; without one there is nothing to edit.
func (s *Service) StartCampaignEdit(c tele.Context) error {
	ctx := helpers.Ctx(c)
	active, err := s.records.ActiveCampaign(ctx)
	if errors.Is(err, store.ErrNotFound) {
		helpers.Answer(c, "")
		return c.Send(textNoActiveCampaign)
	}
	if err != nil {
		return err
	}
	conv := s.states.StartFlow(c.Sender().ID, state.FlowCampaignEdit, state.StepAwaitPhoto)
	conv.Draft.CampaignID = active.ID
	helpers.Answer(c, "")
	return c.Send(textAskPhoto)
}

func (s *Service) campaignPhoto(c tele.Context, conv *state.Conversation) error {
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

func (s *Service) campaignTitle(c tele.Context, conv *state.Conversation) error {
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
	conv.Advance(state.StepAwaitDate)
	return c.Send(textAskDate)
}

func (s *Service) campaignDate(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotDate, msg.ID) {
		s.logDuplicate(c, conv, state.SlotDate)
		return nil
	}
	endDate, err := ParseEndDate(msg.Text)
	if err != nil {
		conv.CloseSlot(state.SlotDate)
		return c.Send(textBadDate)
	}
	conv.Draft.EndDate = endDate.Format(endDateLayout)
	conv.Advance(state.StepPreview)

	if err := c.Send(textPreviewCampaign); err != nil {
		return err
	}
	preview := s.draftCampaign(conv)
	return helpers.ReplyPhoto(c, preview.MediaRef, CampaignCaption(preview),
		PreviewMarkup(CbCampaignPublish, CbCampaignRestart))
}

// CampaignPublish commits the previewed draft: create or update the
// row, enforce the single-active invariant and publish to the channel.
func (s *Service) CampaignPublish(c tele.Context) error {
	userID := c.Sender().ID
	conv := s.states.Get(userID)
	if conv.Step != state.StepPreview ||
		(conv.Flow != state.FlowCampaignCreate && conv.Flow != state.FlowCampaignEdit) {
		helpers.Answer(c, "")
		return nil
	}
	if !conv.Begin(state.SlotDecision, messageID(c)) {
		s.logDuplicate(c, conv, state.SlotDecision)
		helpers.Answer(c, "")
		return nil
	}

	ctx := helpers.Ctx(c)
	draft := s.draftCampaign(conv)
	endDate, err := ParseEndDate(conv.Draft.EndDate)
	if err != nil {
		// Preview cannot be reached with a bad date; treat as stale state.
		s.states.End(userID)
		helpers.Answer(c, "")
		return c.Send(textPublishFailed)
	}

	if conv.Flow == state.FlowCampaignCreate {
		id, err := s.records.CreateCampaign(ctx, draft.MediaRef, draft.Title, endDate)
		if err != nil {
			conv.CloseSlot(state.SlotDecision)
			helpers.Answer(c, "")
			return c.Send(textPublishFailed)
		}
		draft.ID = id
		if retired, err := s.records.DeactivateOtherCampaigns(ctx, id); err != nil {
			logger.Warn(ctx, "flow", "deactivate_others_failed",
				slog.Int64("campaign_id", id),
				slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
			)
		} else if retired > 0 {
			logger.Info(ctx, "flow", "campaigns_retired",
				slog.Int64("campaign_id", id),
				slog.Int64("recipients", retired),
			)
		}
	} else {
		draft.ID = conv.Draft.CampaignID
		if err := s.records.UpdateCampaign(ctx, draft.ID, draft.MediaRef, draft.Title, endDate); err != nil {
			conv.CloseSlot(state.SlotDecision)
			helpers.Answer(c, "")
			return c.Send(textPublishFailed)
		}
		// Publish through the stored anchor so an already-published
		// campaign is edited in place.
		if existing, err := s.records.CampaignByID(ctx, draft.ID); err == nil {
			draft.Anchor = existing.Anchor
		}
	}

	res, err := s.publisher.PublishCampaign(ctx, draft, CampaignCaption(draft), ParticipateMarkup(draft.ID))
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
	if s.adminMenu != nil {
		return s.adminMenu(c)
	}
	return nil
}

// CampaignRestart throws the draft away and restarts at the photo step.
func (s *Service) CampaignRestart(c tele.Context) error {
	userID := c.Sender().ID
	conv := s.states.Get(userID)
	if conv.Flow != state.FlowCampaignCreate && conv.Flow != state.FlowCampaignEdit {
		helpers.Answer(c, "")
		return nil
	}
	campaignID := conv.Draft.CampaignID
	fresh := s.states.StartFlow(userID, conv.Flow, state.StepAwaitPhoto)
	fresh.Draft.CampaignID = campaignID
	helpers.Answer(c, "")
	return c.Send(textAskPhoto)
}

// draftCampaign materializes the conversation draft as a campaign row
// for captions and publishing.
func (s *Service) draftCampaign(conv *state.Conversation) *store.Campaign {
	draft := &store.Campaign{
		ID:       conv.Draft.CampaignID,
		MediaRef: conv.Draft.PhotoFileID,
		Title:    conv.Draft.Title,
		Status:   store.StatusActive,
	}
	if endDate, err := ParseEndDate(conv.Draft.EndDate); err == nil {
		draft.EndDate = endDate
	}
	return draft
}

func (s *Service) logDuplicate(c tele.Context, conv *state.Conversation, slot state.Slot) {
	logger.Info(helpers.Ctx(c), "flow", "duplicate_dropped",
		slog.String("flow", string(conv.Flow)),
		slog.String("flow_id", conv.FlowID),
		slog.String("step", string(conv.Step)),
		slog.String("slot", string(slot)),
		slog.String("status", "duplicate"),
	)
}

// messageID extracts the triggering message id for slot claims;
// callback presses reuse the id of the message the button sits under.
func messageID(c tele.Context) int {
	if msg := c.Message(); msg != nil {
		return msg.ID
	}
	return 0
}
