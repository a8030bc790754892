package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/keyboard"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/flow"
	"github.com/bazumi/promobot/internal/store"
)

// Screen names for the navigation history stack.
const (
	screenMain    = "main_menu"
	screenSupport = "support"
	screenGifts   = "gifts"
	screenVideos  = "videos"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{btnGifts},
		[]string{btnSupport, btnVideos},
	)
}

func sectionMarkup() *tele.ReplyMarkup {
	return keyboard.Reply([]string{btnBack})
}

// start greets the user, records them for announcement fan-out and
// resets both flow state and navigation.
func (a *App) start(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.Ctx(c)
	if err := a.store.TouchKnownUser(ctx, sender.ID); err != nil {
		// Fan-out misses this user until the next /start; not fatal.
		logger.Warn(ctx, "app", "touch_known_user_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
	}
	a.states.End(sender.ID)
	conv := a.states.Get(sender.ID)
	conv.ResetHistory()
	return c.Send(textGreeting, mainMenuMarkup())
}

func (a *App) showMainMenu(c tele.Context) error {
	conv := a.states.Get(c.Sender().ID)
	conv.ResetHistory()
	return c.Send(textMainMenu, mainMenuMarkup())
}

// goBack pops the history stack and re-renders the previous screen;
// an empty stack lands on the main menu.
func (a *App) goBack(c tele.Context) error {
	conv := a.states.Get(c.Sender().ID)
	screen, ok := conv.Back()
	if !ok {
		return a.showMainMenu(c)
	}
	return a.render(c, screen)
}

func (a *App) render(c tele.Context, screen string) error {
	switch screen {
	case screenSupport:
		return a.showSupport(c)
	case screenGifts:
		return a.showGifts(c)
	case screenVideos:
		return a.showVideos(c)
	default:
		return a.showMainMenu(c)
	}
}

// enter pushes the screen the user is leaving onto the history stack.
func (a *App) enter(c tele.Context, from string) {
	a.states.Get(c.Sender().ID).PushScreen(from)
}

func (a *App) showSupport(c tele.Context) error {
	if ok, err := a.requireVerified(c, screenSupport); err != nil || !ok {
		return err
	}
	a.enter(c, screenMain)
	return c.Send(fmt.Sprintf(textSupportIntro, a.cfg.App.ManagerContact), sectionMarkup())
}

func (a *App) showVideos(c tele.Context) error {
	if ok, err := a.requireVerified(c, screenVideos); err != nil || !ok {
		return err
	}
	a.enter(c, screenMain)
	text := fmt.Sprintf(textVideosIntro, a.cfg.App.PlaylistMain, a.cfg.App.PlaylistExtra)
	return c.Send(text, sectionMarkup())
}

// showGifts previews the active campaign with a participate button.
// No verification up front: the participation flow runs its own gate.
func (a *App) showGifts(c tele.Context) error {
	ctx := helpers.Ctx(c)
	campaign, err := a.store.ActiveCampaign(ctx)
	if errors.Is(err, store.ErrNotFound) {
		a.enter(c, screenMain)
		return c.Send(textGiftsEmpty, sectionMarkup())
	}
	if err != nil {
		return err
	}
	a.enter(c, screenMain)
	if err := c.Send(textGiftsIntro, sectionMarkup()); err != nil {
		return err
	}
	return helpers.ReplyPhoto(c, campaign.MediaRef, flow.CampaignCaption(campaign),
		flow.ParticipateMarkup(campaign.ID))
}

// requireVerified gates a section behind one-time phone verification.
// Unverified users are put into the contact-verify flow and land on
// the requested screen once the contact arrives.
func (a *App) requireVerified(c tele.Context, screen string) (bool, error) {
	ctx := helpers.Ctx(c)
	_, err := a.store.VerifiedPhone(ctx, c.Sender().ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	conv := a.states.StartFlow(c.Sender().ID, state.FlowContactVerify, state.StepAwaitContact)
	conv.Draft.Screen = screen
	return false, c.Send(textNeedContact, keyboard.Contact(btnShareContact))
}

// contactVerifyInput consumes the phone for a gated menu section.
func (a *App) contactVerifyInput(c tele.Context, conv *state.Conversation) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if !conv.Begin(state.SlotContact, msg.ID) {
		return nil
	}

	var phone string
	switch {
	case msg.Contact != nil:
		if msg.Contact.UserID != 0 && msg.Contact.UserID != c.Sender().ID {
			conv.CloseSlot(state.SlotContact)
			return c.Send(textBadContact)
		}
		phone = msg.Contact.PhoneNumber
		if !strings.HasPrefix(phone, "+") {
			phone = "+" + phone
		}
	case strings.TrimSpace(msg.Text) != "":
		normalized, err := flow.NormalizePhone(msg.Text)
		if err != nil {
			conv.CloseSlot(state.SlotContact)
			return c.Send(textBadContact)
		}
		phone = normalized
	default:
		conv.CloseSlot(state.SlotContact)
		return c.Send(textBadContact)
	}

	ctx := helpers.Ctx(c)
	if _, err := a.gate.ForceVerify(ctx, c.Sender().ID, phone); err != nil {
		conv.CloseSlot(state.SlotContact)
		if sendErr := c.Send(textOops); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	}

	screen := conv.Draft.Screen
	a.states.End(c.Sender().ID)
	if err := c.Send(textContactSaved, keyboard.Remove()); err != nil {
		return err
	}
	return a.render(c, screen)
}

func (a *App) fallback(c tele.Context) error {
	return c.Send(textUnknown, mainMenuMarkup())
}
