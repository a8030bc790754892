package telegram

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/bazumi/promobot/core/config"
)

// newPoller selects the update source from the configured run mode.
func newPoller(cfg *coreconfig.Config) (tele.Poller, error) {
	switch cfg.Telegram.RunMode {
	case coreconfig.RunModePolling:
		return &tele.LongPoller{
			Timeout: time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second,
			AllowedUpdates: []string{
				"message",
				"callback_query",
			},
		}, nil
	case coreconfig.RunModeWebhook:
		return &tele.Webhook{
			Listen: cfg.Webhook.Listen,
			Endpoint: &tele.WebhookEndpoint{
				PublicURL: cfg.Webhook.PublicURL,
			},
			AllowedUpdates: []string{
				"message",
				"callback_query",
			},
		}, nil
	default:
		return nil, fmt.Errorf("telegram: unsupported run mode %q", cfg.Telegram.RunMode)
	}
}
