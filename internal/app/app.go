// Package app assembles the promo bot: configuration, storage, the
// admission gate, channel publication and the dialog flows, wired
// onto the routing registry.
package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/bazumi/promobot/core/telegram"
	"github.com/bazumi/promobot/core/telegram/middleware"
	"github.com/bazumi/promobot/core/telegram/sender"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/flow"
	"github.com/bazumi/promobot/internal/gate"
	"github.com/bazumi/promobot/internal/publish"
	"github.com/bazumi/promobot/internal/store"
)

// conversationTTL bounds how long an abandoned flow keeps its state.
const conversationTTL = 24 * time.Hour

// App owns every application-level service.
type App struct {
	cfg *Config

	store       *store.Store
	roster      middleware.OperatorChecker
	gate        *gate.Gate
	publisher   *publish.Publisher
	broadcaster *publish.Broadcaster
	flows       *flow.Service
	states      *state.MemoryManager
	dispatcher  *sender.Dispatcher
}

// New wires the application services around an already-created bot.
func New(cfg *Config, db *sqlx.DB, bot *tele.Bot) *App {
	a := &App{
		cfg:    cfg,
		store:  store.New(db),
		states: state.NewMemoryManager(conversationTTL),
	}
	a.roster = a.store

	a.gate = gate.New(a.store, gate.NewChannelMembership(bot, cfg.App.ChannelUsername))
	a.publisher = publish.New(bot, a.store, cfg.App.ChannelUsername)

	a.dispatcher = sender.New(sender.Options{
		Workers:    cfg.Core.Sender.Workers,
		QueueSize:  cfg.Core.Sender.QueueSize,
		MaxRetries: cfg.Core.Sender.MaxRetries,
	})
	a.broadcaster = publish.NewBroadcaster(bot, a.dispatcher)

	a.flows = flow.NewService(flow.Deps{
		States:      a.states,
		Records:     a.store,
		Publisher:   a.publisher,
		Broadcaster: a.broadcaster,
		Admission:   a.gate,
		Private:     bot,
		AdminMenu:   a.adminPanel,
		MainMenu:    a.showMainMenu,
	})
	return a
}

// States exposes the conversation manager for registry construction.
func (a *App) States() state.Manager { return a.states }

// Run starts the background loops and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	go a.states.Run(ctx)
	a.dispatcher.Run(ctx)
}

// Routes attaches every command, button, callback and flow step.
func (a *App) Routes(reg *coretelegram.Registry) {
	a.flows.RegisterSteps(reg.Flows)
	reg.Flows.Register(state.FlowContactVerify, state.StepAwaitContact, a.contactVerifyInput)

	operator := middleware.OperatorOnly(a.roster, textAdminDenied)

	reg.Commands.Handle("/start", a.start)
	reg.Commands.Handle("/cancel", a.flows.Cancel)
	reg.Commands.Handle("/admin", operator(a.adminPanel))
	// Only roster additions are pinned to the super operator; removal
	// needs plain operator rights.
	reg.Commands.Handle("/add_operator", a.superOnly(a.addOperator))
	reg.Commands.Handle("/remove_operator", operator(a.removeOperator))
	reg.Commands.Handle("/verify_user", operator(a.flows.VerifyUser))

	reg.Messages.HandleText(btnSupport, a.showSupport)
	reg.Messages.HandleText(btnGifts, a.showGifts)
	reg.Messages.HandleText(btnVideos, a.showVideos)
	reg.Messages.HandleText(btnBack, a.goBack)
	reg.Messages.Fallback(a.fallback)

	reg.Callbacks.Handle(flow.CbParticipate, a.flows.Participate)
	reg.Callbacks.Handle(flow.CbCheckAgain, a.flows.CheckAgain)
	reg.Callbacks.Handle(flow.CbCampaignPublish, operator(a.flows.CampaignPublish))
	reg.Callbacks.Handle(flow.CbCampaignRestart, operator(a.flows.CampaignRestart))
	reg.Callbacks.Handle(flow.CbAnnouncePublish, operator(a.flows.AnnouncePublish))
	reg.Callbacks.Handle(flow.CbAnnounceRestart, operator(a.flows.AnnounceRestart))

	reg.Callbacks.Handle(cbAdminMenu, operator(a.adminPanel))
	reg.Callbacks.Handle(cbAdminCampaign, operator(a.campaignMenu))
	reg.Callbacks.Handle(cbAdminAnnounce, operator(a.announceMenu))
	reg.Callbacks.Handle(cbCampaignNew, operator(a.flows.StartCampaignCreate))
	reg.Callbacks.Handle(cbCampaignEdit, operator(a.flows.StartCampaignEdit))
	reg.Callbacks.Handle(cbCampaignDelete, operator(a.campaignDeleteAsk))
	reg.Callbacks.Handle(cbCampaignDeleteYes, operator(a.campaignDeleteYes))
	reg.Callbacks.Handle(cbCampaignDeleteNo, operator(a.campaignDeleteNo))
	reg.Callbacks.Handle(cbCampaignNotify, operator(a.campaignNotify))
	reg.Callbacks.Handle(cbCampaignExport, operator(a.campaignExport))
	reg.Callbacks.Handle(cbAnnounceNew, operator(a.flows.StartAnnouncementCreate))
}

// superOnly restricts roster management to the configured super
// operator; the regular roster check is not enough for it.
func (a *App) superOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		if sender.ID != a.cfg.App.SuperOperatorID {
			return c.Send(textSuperOnly)
		}
		return next(c)
	}
}
