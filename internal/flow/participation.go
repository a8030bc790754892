package flow

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/callbacks"
	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/keyboard"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/gate"
	"github.com/bazumi/promobot/internal/store"
)

// Participate handles the participate button, whether pressed under
// the channel post or inside the bot's gifts menu.
func (s *Service) Participate(c tele.Context) error {
	return s.admit(c)
}

// CheckAgain re-runs admission after the user claims to have
// subscribed.
func (s *Service) CheckAgain(c tele.Context) error {
	return s.admit(c)
}

func (s *Service) admit(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.Ctx(c)

	campaignID, err := s.campaignFromCallback(c)
	if err != nil {
		helpers.Answer(c, "")
		return s.sendUser(c, textNoActiveCampaign)
	}

	decision, phone, err := s.admission.Evaluate(ctx, sender.ID, campaignID)
	switch decision {
	case gate.AlreadyRegistered:
		helpers.Answer(c, "")
		return s.sendUser(c, textAlreadyIn)
	case gate.NotSubscribed:
		helpers.Answer(c, "")
		if err != nil {
			// Probe failed, not a denial: offer a retry.
			return s.sendUser(c, textCheckFailed, CheckAgainMarkup(campaignID))
		}
		return s.sendUser(c, textSubscribeFirst, CheckAgainMarkup(campaignID))
	case gate.NeedsVerification:
		conv := s.states.StartFlow(sender.ID, state.FlowParticipation, state.StepAwaitContact)
		conv.Draft.CampaignID = campaignID
		helpers.Answer(c, "")
		return s.sendUser(c, textAskContact, keyboard.Contact(btnShareContact))
	case gate.CanRegister:
		// Silent fast path: registration with the stored phone, no
		// prompt.
		if _, err := s.admission.Register(ctx, campaignID, sender.ID, displayName(sender), phone); err != nil {
			helpers.Answer(c, "")
			return err
		}
		helpers.Answer(c, "")
		return s.sendUser(c, textJoined)
	default:
		helpers.Answer(c, "")
		if err != nil {
			return err
		}
		return nil
	}
}

// campaignFromCallback resolves the campaign the press refers to,
// falling back to the current active campaign for buttons without a
// payload. The campaign must still be active.
func (s *Service) campaignFromCallback(c tele.Context) (int64, error) {
	ctx := helpers.Ctx(c)
	if cb := c.Callback(); cb != nil {
		if _, id, err := callbacks.DecodeID(cb.Data); err == nil {
			campaign, err := s.records.CampaignByID(ctx, id)
			if err != nil {
				return 0, err
			}
			if campaign.Status != store.StatusActive {
				return 0, store.ErrNotFound
			}
			return id, nil
		}
	}
	active, err := s.records.ActiveCampaign(ctx)
	if err != nil {
		return 0, err
	}
	return active.ID, nil
}

// participationContact consumes the phone-bearing reply: a structured
// contact share or free text matching a phone pattern. Anything else
// re-prompts without advancing.
func (s *Service) participationContact(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotContact, msg.ID) {
		s.logDuplicate(c, conv, state.SlotContact)
		return nil
	}

	var phone string
	switch {
	case msg.Contact != nil:
		// Reject forwarded third-party contacts; verification binds
		// the sender's own number.
		if msg.Contact.UserID != 0 && msg.Contact.UserID != c.Sender().ID {
			conv.CloseSlot(state.SlotContact)
			return c.Send(textBadPhone)
		}
		phone = msg.Contact.PhoneNumber
		if !strings.HasPrefix(phone, "+") {
			phone = "+" + phone
		}
	case strings.TrimSpace(msg.Text) != "":
		normalized, err := NormalizePhone(msg.Text)
		if err != nil {
			conv.CloseSlot(state.SlotContact)
			return c.Send(textBadPhone)
		}
		phone = normalized
	default:
		conv.CloseSlot(state.SlotContact)
		return c.Send(textBadPhone)
	}

	ctx := helpers.Ctx(c)
	campaignID := conv.Draft.CampaignID
	if _, err := s.admission.Register(ctx, campaignID, c.Sender().ID, displayName(c.Sender()), phone); err != nil {
		conv.CloseSlot(state.SlotContact)
		if sendErr := c.Send(textCheckFailed); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	}

	s.states.End(c.Sender().ID)
	if err := c.Send(textJoined, keyboard.Remove()); err != nil {
		return err
	}
	if s.mainMenu != nil {
		return s.mainMenu(c)
	}
	return nil
}

// sendUser delivers to the sender's private chat regardless of where
// the triggering update came from.
func (s *Service) sendUser(c tele.Context, what interface{}, opts ...interface{}) error {
	opts = append([]interface{}{&tele.SendOptions{ParseMode: tele.ModeHTML}}, opts...)
	if s.private != nil {
		_, err := s.private.Send(tele.ChatID(c.Sender().ID), what, opts...)
		return err
	}
	return c.Send(what, opts...)
}
