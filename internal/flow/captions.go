package flow

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/callbacks"
	"github.com/bazumi/promobot/core/telegram/format"
	"github.com/bazumi/promobot/core/telegram/keyboard"
	"github.com/bazumi/promobot/internal/store"
)

// CampaignCaption renders the channel caption for a campaign.
func CampaignCaption(c *store.Campaign) string {
	return format.Bold(c.Title) + "\n\n" +
		"Розыгрыш до " + c.EndDate.Format(endDateLayout) + "\n" +
		"Жмите кнопку ниже, чтобы участвовать!"
}

// AnnouncementCaption renders the caption for an announcement.
func AnnouncementCaption(a *store.Announcement) string {
	caption := format.Bold(a.Title)
	if a.Body != "" {
		caption += "\n\n" + format.Escape(a.Body)
	}
	return caption
}

// ParticipateMarkup builds the inline button under the channel post
// that starts the participation flow.
func ParticipateMarkup(campaignID int64) *tele.ReplyMarkup {
	return keyboard.Inline(keyboard.Row(keyboard.Btn{
		Text: btnParticipate,
		Data: callbacks.MustEncode(CbParticipate, strconv.FormatInt(campaignID, 10)),
	}))
}

// CheckAgainMarkup offers a subscription re-check after the user says
// they joined the channel.
func CheckAgainMarkup(campaignID int64) *tele.ReplyMarkup {
	return keyboard.Inline(keyboard.Row(keyboard.Btn{
		Text: btnCheckAgain,
		Data: callbacks.MustEncode(CbCheckAgain, strconv.FormatInt(campaignID, 10)),
	}))
}

// PreviewMarkup is the publish/restart fork at the end of an
// authoring flow.
func PreviewMarkup(publishKey, restartKey string) *tele.ReplyMarkup {
	return keyboard.Inline(keyboard.Row(
		keyboard.Btn{Text: btnPublish, Data: callbacks.MustEncode(publishKey, "")},
		keyboard.Btn{Text: btnRestart, Data: callbacks.MustEncode(restartKey, "")},
	))
}
