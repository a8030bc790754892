package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/callbacks"
	"github.com/bazumi/promobot/core/telegram/helpers"
	"github.com/bazumi/promobot/core/telegram/keyboard"
	"github.com/bazumi/promobot/internal/flow"
	"github.com/bazumi/promobot/internal/store"
)

// Operator panel callback keys.
const (
	cbAdminMenu     = "adm_menu"
	cbAdminCampaign = "adm_cmp"
	cbAdminAnnounce = "adm_ann"

	cbCampaignNew       = "cmp_new"
	cbCampaignEdit      = "cmp_edit"
	cbCampaignDelete    = "cmp_del"
	cbCampaignDeleteYes = "cmp_del_yes"
	cbCampaignDeleteNo  = "cmp_del_no"
	cbCampaignNotify    = "cmp_notify"
	cbCampaignExport    = "cmp_export"

	cbAnnounceNew = "ann_new"
)

// adminPanel shows the top-level operator menu. It doubles as the
// landing screen after an authoring flow finishes.
func (a *App) adminPanel(c tele.Context) error {
	markup := keyboard.Inline(
		keyboard.Row(
			keyboard.Btn{Text: btnAdminCampaign, Data: cbAdminCampaign},
			keyboard.Btn{Text: btnAdminAnnounce, Data: cbAdminAnnounce},
		),
	)
	if c.Callback() != nil {
		return helpers.EditOrSend(c, textAdminMenu, markup)
	}
	return c.Send(textAdminMenu, markup)
}

func (a *App) campaignMenu(c tele.Context) error {
	markup := keyboard.Inline(
		keyboard.Row(
			keyboard.Btn{Text: btnCreate, Data: cbCampaignNew},
			keyboard.Btn{Text: btnEdit, Data: cbCampaignEdit},
			keyboard.Btn{Text: btnDelete, Data: cbCampaignDelete},
		),
		keyboard.Row(
			keyboard.Btn{Text: btnNotify, Data: cbCampaignNotify},
			keyboard.Btn{Text: btnExport, Data: cbCampaignExport},
		),
		keyboard.Row(keyboard.Btn{Text: btnToAdmin, Data: cbAdminMenu}),
	)
	return helpers.EditOrSend(c, textAdminCampaignMenu, markup)
}

func (a *App) announceMenu(c tele.Context) error {
	markup := keyboard.Inline(
		keyboard.Row(keyboard.Btn{Text: btnCreate, Data: cbAnnounceNew}),
		keyboard.Row(keyboard.Btn{Text: btnToAdmin, Data: cbAdminMenu}),
	)
	return helpers.EditOrSend(c, textAdminAnnounceMenu, markup)
}

// campaignDeleteAsk shows a confirmation dialog before retraction; the
// campaign id rides in the Yes button so a stale press cannot delete a
// newer campaign.
func (a *App) campaignDeleteAsk(c tele.Context) error {
	ctx := helpers.Ctx(c)
	campaign, err := a.store.ActiveCampaign(ctx)
	if errors.Is(err, store.ErrNotFound) {
		helpers.Answer(c, "")
		return helpers.EditOrSend(c, textDeleteNothing)
	}
	if err != nil {
		return err
	}
	yes, err := callbacks.EncodeID(cbCampaignDeleteYes, campaign.ID)
	if err != nil {
		return err
	}
	markup := keyboard.Inline(keyboard.Row(
		keyboard.Btn{Text: btnYes, Data: yes},
		keyboard.Btn{Text: btnNo, Data: cbCampaignDeleteNo},
	))
	return helpers.EditOrSend(c, fmt.Sprintf(textDeleteConfirm, campaign.Title), markup)
}

func (a *App) campaignDeleteYes(c tele.Context) error {
	ctx := helpers.Ctx(c)
	_, id, err := callbacks.DecodeID(c.Callback().Data)
	if err != nil {
		helpers.Answer(c, "")
		return helpers.EditOrSend(c, textDeleteNothing)
	}
	campaign, err := a.store.CampaignByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		helpers.Answer(c, "")
		return helpers.EditOrSend(c, textDeleteNothing)
	}
	if err != nil {
		return err
	}
	if err := a.publisher.RetractCampaign(ctx, campaign); err != nil {
		logger.Error(ctx, "app", "campaign_retract_failed",
			slog.Int64("campaign_id", id),
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
		return helpers.EditOrSend(c, textOops)
	}
	return helpers.EditOrSend(c, textDeleteDone)
}

func (a *App) campaignDeleteNo(c tele.Context) error {
	if err := helpers.EditOrSend(c, textDeleteCancelled); err != nil {
		return err
	}
	return a.adminPanel(c)
}

// campaignNotify sends the channel-ready preview to the operator's own
// chat, participate button included.
func (a *App) campaignNotify(c tele.Context) error {
	ctx := helpers.Ctx(c)
	campaign, err := a.store.ActiveCampaign(ctx)
	if errors.Is(err, store.ErrNotFound) {
		helpers.Answer(c, "")
		return c.Send(textNotifyNothing)
	}
	if err != nil {
		return err
	}
	helpers.Answer(c, "")
	return helpers.ReplyPhoto(c, campaign.MediaRef, flow.CampaignCaption(campaign),
		flow.ParticipateMarkup(campaign.ID))
}

// campaignExport lists participants of the active campaign as plain
// text, one line per registration.
func (a *App) campaignExport(c tele.Context) error {
	ctx := helpers.Ctx(c)
	campaign, err := a.store.ActiveCampaign(ctx)
	if errors.Is(err, store.ErrNotFound) {
		helpers.Answer(c, "")
		return c.Send(textNotifyNothing)
	}
	if err != nil {
		return err
	}
	regs, err := a.store.RegistrationsByCampaign(ctx, campaign.ID)
	if err != nil {
		return err
	}
	helpers.Answer(c, "")
	if len(regs) == 0 {
		return c.Send(textExportEmpty)
	}

	var b strings.Builder
	fmt.Fprintf(&b, textExportHeader, campaign.Title, len(regs))
	for i, reg := range regs {
		name := reg.DisplayName
		if name == "" {
			name = strconv.FormatInt(reg.UserID, 10)
		}
		fmt.Fprintf(&b, "\n%d. %s — %s", i+1, name, reg.Phone)
	}
	return c.Send(b.String())
}

// addOperator and removeOperator manage the roster; both are reachable
// only through the super-operator wrapper.
func (a *App) addOperator(c tele.Context) error {
	id, err := operatorArg(c, "/add_operator")
	if err != nil || id == 0 {
		return err
	}
	if err := a.store.AddOperator(helpers.Ctx(c), id); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf(textOperatorAdded, id))
}

func (a *App) removeOperator(c tele.Context) error {
	id, err := operatorArg(c, "/remove_operator")
	if err != nil || id == 0 {
		return err
	}
	removed, err := a.store.RemoveOperator(helpers.Ctx(c), id)
	if err != nil {
		return err
	}
	if !removed {
		return c.Send(fmt.Sprintf(textOperatorMissing, id))
	}
	return c.Send(fmt.Sprintf(textOperatorRemoved, id))
}

// operatorArg parses the single numeric argument of a roster command,
// replying with usage help itself; id 0 means "already answered".
func operatorArg(c tele.Context, command string) (int64, error) {
	args := c.Args()
	if len(args) != 1 {
		return 0, c.Send(fmt.Sprintf(textOperatorUsage, command))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, c.Send(textOperatorBadInput)
	}
	return id, nil
}
