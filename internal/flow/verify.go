package flow

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/state"
)

// VerifyUser handles /verify_user. With inline arguments it verifies
// immediately; without them it enters a one-step flow asking for
// "<id> <phone>".
func (s *Service) VerifyUser(c tele.Context) error {
	args := c.Args()
	if len(args) >= 2 {
		_, err := s.forceVerify(c, strings.Join(args[:2], " "))
		return err
	}
	s.states.StartFlow(c.Sender().ID, state.FlowVerifyUser, state.StepAwaitUserID)
	return c.Send(textVerifyAskUser)
}

func (s *Service) verifyUserInput(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotUserID, msg.ID) {
		s.logDuplicate(c, conv, state.SlotUserID)
		return nil
	}
	done, err := s.forceVerify(c, msg.Text)
	if err != nil {
		conv.CloseSlot(state.SlotUserID)
		return err
	}
	if !done {
		// Malformed input: stay on the step and accept a retry.
		conv.CloseSlot(state.SlotUserID)
		return nil
	}
	s.states.End(c.Sender().ID)
	return nil
}

func (s *Service) forceVerify(c tele.Context, input string) (done bool, err error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) != 2 {
		return false, c.Send(textVerifyBadInput)
	}
	targetID, parseErr := strconv.ParseInt(fields[0], 10, 64)
	if parseErr != nil || targetID <= 0 {
		return false, c.Send(textVerifyBadInput)
	}
	phone, phoneErr := NormalizePhone(fields[1])
	if phoneErr != nil {
		return false, c.Send(textVerifyBadInput)
	}

	fresh, err := s.admission.ForceVerify(helpers.Ctx(c), targetID, phone)
	if err != nil {
		return false, err
	}
	if !fresh {
		return true, c.Send(textVerifyExisted)
	}
	return true, c.Send(textVerifyDone)
}
