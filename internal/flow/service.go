// Package flow implements the per-user dialogs: campaign create and
// edit, announcement create with fan-out, and the gated participation
// flow. Each step consumes exactly one inbound message, claims its
// idempotency slot before side effects and hands control back to the
// dispatcher.
package flow

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/gate"
	"github.com/bazumi/promobot/internal/publish"
	"github.com/bazumi/promobot/internal/store"
)

// Callback keys owned by the flows.
const (
	CbParticipate     = "join"
	CbCheckAgain      = "join_recheck"
	CbCampaignPublish = "cmp_pub"
	CbCampaignRestart = "cmp_restart"
	CbAnnouncePublish = "ann_pub"
	CbAnnounceRestart = "ann_restart"
)

// Records is the slice of the store the flows touch.
type Records interface {
	CreateCampaign(ctx context.Context, mediaRef, title string, endDate time.Time) (int64, error)
	CampaignByID(ctx context.Context, id int64) (*store.Campaign, error)
	ActiveCampaign(ctx context.Context) (*store.Campaign, error)
	UpdateCampaign(ctx context.Context, id int64, mediaRef, title string, endDate time.Time) error
	DeactivateOtherCampaigns(ctx context.Context, keep int64) (int64, error)
	CreateAnnouncement(ctx context.Context, mediaRef, title, body string) (int64, error)
	AnnouncementByID(ctx context.Context, id int64) (*store.Announcement, error)
	KnownUserIDs(ctx context.Context) ([]int64, error)
}

// Publisher is the channel publication surface the flows call.
type Publisher interface {
	PublishCampaign(ctx context.Context, c *store.Campaign, caption string, markup *tele.ReplyMarkup) (publish.Result, error)
	PublishAnnouncement(ctx context.Context, a *store.Announcement, caption string, markup *tele.ReplyMarkup) (publish.Result, error)
}

// Broadcaster fans announcements out to private recipients.
type Broadcaster interface {
	Broadcast(ctx context.Context, a *store.Announcement, caption string, recipients []int64) (sent, failed int)
}

// Admission is the gate surface the participation flow calls.
type Admission interface {
	Evaluate(ctx context.Context, userID, campaignID int64) (gate.Decision, string, error)
	Register(ctx context.Context, campaignID, userID int64, displayName, phone string) (bool, error)
	ForceVerify(ctx context.Context, userID int64, phone string) (fresh bool, err error)
}

// PrivateSender delivers messages to a user's private chat. Needed
// because participation starts from a channel button, where c.Send
// would post into the channel.
type PrivateSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Service owns every flow's step handlers.
type Service struct {
	states      state.Manager
	records     Records
	publisher   Publisher
	broadcaster Broadcaster
	admission   Admission
	private     PrivateSender

	// adminMenu re-renders the operator landing screen after an
	// authoring flow finishes; mainMenu does the same for users.
	adminMenu tele.HandlerFunc
	mainMenu  tele.HandlerFunc
}

// Deps collects Service construction inputs.
type Deps struct {
	States      state.Manager
	Records     Records
	Publisher   Publisher
	Broadcaster Broadcaster
	Admission   Admission
	Private     PrivateSender
	AdminMenu   tele.HandlerFunc
	MainMenu    tele.HandlerFunc
}

func NewService(d Deps) *Service {
	return &Service{
		states:      d.States,
		records:     d.Records,
		publisher:   d.Publisher,
		broadcaster: d.Broadcaster,
		admission:   d.Admission,
		private:     d.Private,
		adminMenu:   d.AdminMenu,
		mainMenu:    d.MainMenu,
	}
}

// RegisterSteps binds every flow step to the conversation registry.
func (s *Service) RegisterSteps(reg *state.Registry) {
	// Campaign create and edit share the same pipeline shape.
	for _, flow := range []state.Flow{state.FlowCampaignCreate, state.FlowCampaignEdit} {
		reg.Register(flow, state.StepAwaitPhoto, s.campaignPhoto)
		reg.Register(flow, state.StepAwaitTitle, s.campaignTitle)
		reg.Register(flow, state.StepAwaitDate, s.campaignDate)
	}

	reg.Register(state.FlowAnnouncementCreate, state.StepAwaitPhoto, s.announcePhoto)
	reg.Register(state.FlowAnnouncementCreate, state.StepAwaitTitle, s.announceTitle)
	reg.Register(state.FlowAnnouncementCreate, state.StepAwaitBody, s.announceBody)

	reg.Register(state.FlowParticipation, state.StepAwaitContact, s.participationContact)

	reg.Register(state.FlowVerifyUser, state.StepAwaitUserID, s.verifyUserInput)
}

// Cancel aborts whatever flow the user is in.
func (s *Service) Cancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	conv := s.states.Get(sender.ID)
	wasActive := conv.InFlow()
	s.states.End(sender.ID)
	if !wasActive {
		return c.Send(textNothingToCancel)
	}
	return c.Send(textCancelled)
}

func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
