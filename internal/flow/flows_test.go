package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/gate"
	"github.com/bazumi/promobot/internal/publish"
	"github.com/bazumi/promobot/internal/store"
)

// fakeCtx implements the slice of tele.Context the flows touch.
// Calling anything else panics through the embedded nil interface,
// which is exactly what a test wants.
type fakeCtx struct {
	tele.Context
	update tele.Update
	sender *tele.User
	chat   *tele.Chat
	cb     *tele.Callback
	m      *tele.Message

	mu     sync.Mutex
	sent   []interface{}
	values map[string]interface{}
}

func newFakeCtx(userID int64) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID, FirstName: "Fox"},
		chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		values: make(map[string]interface{}),
	}
}

func (f *fakeCtx) withText(msgID int, text string) *fakeCtx {
	f.m = &tele.Message{ID: msgID, Text: text, Sender: f.sender, Chat: f.chat}
	f.cb = nil
	return f
}

func (f *fakeCtx) withPhoto(msgID int, fileID string) *fakeCtx {
	f.m = &tele.Message{ID: msgID, Photo: &tele.Photo{File: tele.File{FileID: fileID}}, Sender: f.sender, Chat: f.chat}
	f.cb = nil
	return f
}

func (f *fakeCtx) withDocument(msgID int, fileID, mime string) *fakeCtx {
	f.m = &tele.Message{
		ID:       msgID,
		Document: &tele.Document{File: tele.File{FileID: fileID}, MIME: mime},
		Sender:   f.sender,
		Chat:     f.chat,
	}
	f.cb = nil
	return f
}

func (f *fakeCtx) withContact(msgID int, phone string, contactUserID int64) *fakeCtx {
	f.m = &tele.Message{
		ID:      msgID,
		Contact: &tele.Contact{PhoneNumber: phone, UserID: contactUserID},
		Sender:  f.sender,
		Chat:    f.chat,
	}
	f.cb = nil
	return f
}

func (f *fakeCtx) withCallback(msgID int, data string) *fakeCtx {
	f.m = &tele.Message{ID: msgID, Sender: f.sender, Chat: f.chat}
	f.cb = &tele.Callback{Data: data, Sender: f.sender, Message: f.m}
	return f
}

func (f *fakeCtx) Message() *tele.Message   { return f.m }
func (f *fakeCtx) Sender() *tele.User       { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat         { return f.chat }
func (f *fakeCtx) Callback() *tele.Callback { return f.cb }
func (f *fakeCtx) Update() tele.Update      { return f.update }

func (f *fakeCtx) Text() string {
	if f.m == nil {
		return ""
	}
	return f.m.Text
}

func (f *fakeCtx) Args() []string {
	if f.m == nil {
		return nil
	}
	fields := strings.Fields(f.m.Text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func (f *fakeCtx) Get(key string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

func (f *fakeCtx) Set(key string, v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = v
}

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeCtx) Respond(...*tele.CallbackResponse) error { return nil }

func (f *fakeCtx) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if str, ok := s.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// fakeFlowRecords is an in-memory Records.
type fakeFlowRecords struct {
	mu            sync.Mutex
	nextID        int64
	campaigns     map[int64]*store.Campaign
	announcements map[int64]*store.Announcement
	knownUsers    []int64
}

func newFakeFlowRecords() *fakeFlowRecords {
	return &fakeFlowRecords{
		campaigns:     make(map[int64]*store.Campaign),
		announcements: make(map[int64]*store.Announcement),
	}
}

func (f *fakeFlowRecords) CreateCampaign(_ context.Context, mediaRef, title string, endDate time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.campaigns[f.nextID] = &store.Campaign{
		ID: f.nextID, MediaRef: mediaRef, Title: title, EndDate: endDate, Status: store.StatusActive,
	}
	return f.nextID, nil
}

func (f *fakeFlowRecords) CampaignByID(_ context.Context, id int64) (*store.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeFlowRecords) ActiveCampaign(_ context.Context) (*store.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := f.nextID; i >= 1; i-- {
		if c, ok := f.campaigns[i]; ok && c.Status == store.StatusActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeFlowRecords) UpdateCampaign(_ context.Context, id int64, mediaRef, title string, endDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return store.ErrNotFound
	}
	c.MediaRef, c.Title, c.EndDate = mediaRef, title, endDate
	return nil
}

func (f *fakeFlowRecords) DeactivateOtherCampaigns(_ context.Context, keep int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, c := range f.campaigns {
		if id != keep && c.Status == store.StatusActive {
			c.Status = store.StatusInactive
			n++
		}
	}
	return n, nil
}

func (f *fakeFlowRecords) CreateAnnouncement(_ context.Context, mediaRef, title, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.announcements[f.nextID] = &store.Announcement{ID: f.nextID, MediaRef: mediaRef, Title: title, Body: body}
	return f.nextID, nil
}

func (f *fakeFlowRecords) AnnouncementByID(_ context.Context, id int64) (*store.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeFlowRecords) KnownUserIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.knownUsers...), nil
}

// fakePublisher counts publishes.
type fakePublisher struct {
	mu         sync.Mutex
	campaigns  int
	announces  int
	fail       bool
	fallback   bool
	lastAnchor int64
}

func (f *fakePublisher) PublishCampaign(_ context.Context, c *store.Campaign, _ string, _ *tele.ReplyMarkup) (publish.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return publish.Result{}, fmt.Errorf("publish: send: boom")
	}
	f.campaigns++
	f.lastAnchor = 1000 + int64(f.campaigns)
	return publish.Result{MessageID: f.lastAnchor, Fallback: f.fallback}, nil
}

func (f *fakePublisher) PublishAnnouncement(_ context.Context, _ *store.Announcement, _ string, _ *tele.ReplyMarkup) (publish.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return publish.Result{}, fmt.Errorf("publish: send: boom")
	}
	f.announces++
	return publish.Result{MessageID: 2000 + int64(f.announces)}, nil
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	runs int
	last []int64
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, _ *store.Announcement, _ string, recipients []int64) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	f.last = recipients
	return len(recipients), 0
}

// fakeAdmission scripts gate decisions and records registrations
// idempotently.
type fakeAdmission struct {
	mu        sync.Mutex
	decision  gate.Decision
	phone     string
	evalErr   error
	regs      map[string]string
	verified  map[int64]string
	registers int
}

func newFakeAdmission(d gate.Decision) *fakeAdmission {
	return &fakeAdmission{
		decision: d,
		regs:     make(map[string]string),
		verified: make(map[int64]string),
	}
}

func (f *fakeAdmission) Evaluate(_ context.Context, _, _ int64) (gate.Decision, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decision, f.phone, f.evalErr
}

func (f *fakeAdmission) Register(_ context.Context, campaignID, userID int64, _, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	key := strconv.FormatInt(campaignID, 10) + ":" + strconv.FormatInt(userID, 10)
	if _, ok := f.regs[key]; ok {
		return false, nil
	}
	f.regs[key] = phone
	return true, nil
}

func (f *fakeAdmission) ForceVerify(_ context.Context, userID int64, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.verified[userID]; ok {
		return false, nil
	}
	f.verified[userID] = phone
	return true, nil
}

type flowFixture struct {
	svc       *Service
	states    *state.MemoryManager
	registry  *state.Registry
	records   *fakeFlowRecords
	publisher *fakePublisher
	broadcast *fakeBroadcaster
	admission *fakeAdmission
}

func newFlowFixture(t *testing.T, decision gate.Decision) *flowFixture {
	t.Helper()
	fx := &flowFixture{
		states:    state.NewMemoryManager(time.Hour),
		registry:  state.NewRegistry(),
		records:   newFakeFlowRecords(),
		publisher: &fakePublisher{},
		broadcast: &fakeBroadcaster{},
		admission: newFakeAdmission(decision),
	}
	fx.svc = NewService(Deps{
		States:      fx.states,
		Records:     fx.records,
		Publisher:   fx.publisher,
		Broadcaster: fx.broadcast,
		Admission:   fx.admission,
	})
	fx.svc.RegisterSteps(fx.registry)
	return fx
}

func (fx *flowFixture) dispatch(t *testing.T, c tele.Context) {
	t.Helper()
	conv := fx.states.Get(c.Sender().ID)
	handled, err := fx.registry.Dispatch(c, conv)
	require.True(t, handled, "step handler must exist for %s/%s", conv.Flow, conv.Step)
	require.NoError(t, err)
}

func TestCampaignCreateScenario(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)

	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "photo-abc"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "Plush Fox"))
	fx.dispatch(t, newFakeCtx(operator).withText(4, "15.03.2025"))

	conv := fx.states.Get(operator)
	assert.Equal(t, state.StepPreview, conv.Step)
	assert.Equal(t, "Plush Fox", conv.Draft.Title)

	require.NoError(t, fx.svc.CampaignPublish(newFakeCtx(operator).withCallback(5, CbCampaignPublish)))

	assert.Equal(t, 1, fx.publisher.campaigns, "exactly one broadcast publish")
	require.Len(t, fx.records.campaigns, 1)
	created := fx.records.campaigns[1]
	assert.Equal(t, store.StatusActive, created.Status)
	assert.Equal(t, "Plush Fox", created.Title)
	assert.Equal(t, "photo-abc", created.MediaRef)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), created.EndDate)
	assert.False(t, fx.states.Get(operator).InFlow(), "state cleared after publish")
}

func TestCampaignCreateDeactivatesPriorActive(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	_, err := fx.records.CreateCampaign(context.Background(), "old", "Old", time.Now())
	require.NoError(t, err)
	const operator = int64(500)

	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "new-photo"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "New"))
	fx.dispatch(t, newFakeCtx(operator).withText(4, "01.01.2030"))
	require.NoError(t, fx.svc.CampaignPublish(newFakeCtx(operator).withCallback(5, CbCampaignPublish)))

	assert.Equal(t, store.StatusInactive, fx.records.campaigns[1].Status, "previous active campaign retired")
	assert.Equal(t, store.StatusActive, fx.records.campaigns[2].Status)
}

func TestDuplicatePhotoDeliveryProcessedOnce(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))

	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "first"))
	// Same message redelivered plus an album sibling.
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "first"))

	conv := fx.states.Get(operator)
	assert.Equal(t, state.StepAwaitTitle, conv.Step)
	assert.Equal(t, "first", conv.Draft.PhotoFileID)
}

func TestImageDocumentAcceptedAtPhotoStep(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))

	// Uncompressed upload: the image arrives as a document.
	fx.dispatch(t, newFakeCtx(operator).withDocument(2, "doc-image", "image/png"))

	conv := fx.states.Get(operator)
	assert.Equal(t, state.StepAwaitTitle, conv.Step)
	assert.Equal(t, "doc-image", conv.Draft.PhotoFileID)
}

func TestNonImageDocumentRejectedAtPhotoStep(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartAnnouncementCreate(newFakeCtx(operator).withText(1, "")))

	c := newFakeCtx(operator).withDocument(2, "doc-pdf", "application/pdf")
	fx.dispatch(t, c)

	conv := fx.states.Get(operator)
	assert.Equal(t, state.StepAwaitPhoto, conv.Step)
	assert.Empty(t, conv.Draft.PhotoFileID)
	assert.Contains(t, c.sentTexts(), textPhotoExpected)

	fx.dispatch(t, newFakeCtx(operator).withDocument(3, "doc-image", "image/jpeg"))
	assert.Equal(t, state.StepAwaitTitle, fx.states.Get(operator).Step)
}

func TestInvalidDateDoesNotAdvance(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "photo"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "Title"))

	for i, bad := range []string{"2030-01-01", "31.02.2030", ""} {
		c := newFakeCtx(operator).withText(10+i, bad)
		fx.dispatch(t, c)
		conv := fx.states.Get(operator)
		assert.Equal(t, state.StepAwaitDate, conv.Step, "date %q must not advance", bad)
		assert.Contains(t, c.sentTexts(), textBadDate)
	}

	fx.dispatch(t, newFakeCtx(operator).withText(20, "01.01.2030"))
	assert.Equal(t, state.StepPreview, fx.states.Get(operator).Step)
}

func TestDuplicatePublishPressPublishesOnce(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "photo"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "Title"))
	fx.dispatch(t, newFakeCtx(operator).withText(4, "01.01.2030"))

	require.NoError(t, fx.svc.CampaignPublish(newFakeCtx(operator).withCallback(5, CbCampaignPublish)))
	require.NoError(t, fx.svc.CampaignPublish(newFakeCtx(operator).withCallback(5, CbCampaignPublish)))

	assert.Equal(t, 1, fx.publisher.campaigns, "second press must not publish again")
	assert.Len(t, fx.records.campaigns, 1)
}

func TestAnnouncementScenarioWithFanOut(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	fx.records.knownUsers = []int64{11, 12, 13}
	const operator = int64(500)

	require.NoError(t, fx.svc.StartAnnouncementCreate(newFakeCtx(operator).withText(1, "")))
	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "ann-photo"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "Big News"))
	fx.dispatch(t, newFakeCtx(operator).withText(4, "Details inside"))

	c := newFakeCtx(operator).withCallback(5, CbAnnouncePublish)
	require.NoError(t, fx.svc.AnnouncePublish(c))

	assert.Equal(t, 1, fx.publisher.announces)
	assert.Equal(t, 1, fx.broadcast.runs)
	assert.Equal(t, []int64{11, 12, 13}, fx.broadcast.last)
	assert.False(t, fx.states.Get(operator).InFlow())
}

func TestParticipationNotSubscribed(t *testing.T) {
	fx := newFlowFixture(t, gate.NotSubscribed)
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)
	const user = int64(42)

	c := newFakeCtx(user).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(c))

	assert.Contains(t, c.sentTexts(), textSubscribeFirst)
	assert.False(t, fx.states.Get(user).InFlow(), "no dangling flow state")
	assert.Zero(t, fx.admission.registers)
}

func TestParticipationProbeFailureOffersRetry(t *testing.T) {
	fx := newFlowFixture(t, gate.NotSubscribed)
	fx.admission.evalErr = fmt.Errorf("gate: membership probe: timeout")
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)

	c := newFakeCtx(42).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(c))
	assert.Contains(t, c.sentTexts(), textCheckFailed)
}

func TestParticipationVerifiedFastPath(t *testing.T) {
	fx := newFlowFixture(t, gate.CanRegister)
	fx.admission.phone = "+79991112233"
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)
	const user = int64(42)

	c := newFakeCtx(user).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(c))

	assert.Equal(t, "+79991112233", fx.admission.regs["1:42"], "registered with the stored phone")
	texts := c.sentTexts()
	assert.Contains(t, texts, textJoined)
	assert.NotContains(t, texts, textAskContact, "fast path must not prompt for a phone")
	assert.False(t, fx.states.Get(user).InFlow())
}

func TestParticipationNeedsVerificationThenContact(t *testing.T) {
	fx := newFlowFixture(t, gate.NeedsVerification)
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)
	const user = int64(42)

	entry := newFakeCtx(user).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(entry))
	assert.Contains(t, entry.sentTexts(), textAskContact)
	conv := fx.states.Get(user)
	require.True(t, conv.InFlow())
	assert.Equal(t, state.StepAwaitContact, conv.Step)

	// Garbage reply re-prompts without leaving the step.
	garbage := newFakeCtx(user).withText(2, "not a phone")
	fx.dispatch(t, garbage)
	assert.Contains(t, garbage.sentTexts(), textBadPhone)
	assert.Equal(t, state.StepAwaitContact, fx.states.Get(user).Step)

	share := newFakeCtx(user).withContact(3, "+79995556677", user)
	fx.dispatch(t, share)
	assert.Equal(t, "+79995556677", fx.admission.regs["1:42"])
	assert.False(t, fx.states.Get(user).InFlow())
}

func TestDuplicateContactDeliveryRegistersOnce(t *testing.T) {
	fx := newFlowFixture(t, gate.NeedsVerification)
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)
	const user = int64(42)

	require.NoError(t, fx.svc.Participate(newFakeCtx(user).withCallback(1, CbParticipate+"|1")))
	fx.dispatch(t, newFakeCtx(user).withContact(2, "+79995556677", user))
	// Redelivery of the same contact message after the flow ended:
	// the conversation is idle, so the registry has no handler.
	conv := fx.states.Get(user)
	handled, dispatchErr := fx.registry.Dispatch(newFakeCtx(user).withContact(2, "+79995556677", user), conv)
	require.NoError(t, dispatchErr)
	assert.False(t, handled)

	assert.Equal(t, 1, fx.admission.registers)
}

func TestParticipationAlreadyRegistered(t *testing.T) {
	fx := newFlowFixture(t, gate.AlreadyRegistered)
	_, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)

	c := newFakeCtx(42).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(c))
	assert.Contains(t, c.sentTexts(), textAlreadyIn)
	assert.Zero(t, fx.admission.registers)
}

func TestParticipateOnInactiveCampaign(t *testing.T) {
	fx := newFlowFixture(t, gate.CanRegister)
	id, err := fx.records.CreateCampaign(context.Background(), "p", "Promo", time.Now())
	require.NoError(t, err)
	fx.records.campaigns[id].Status = store.StatusInactive

	c := newFakeCtx(42).withCallback(1, CbParticipate+"|1")
	require.NoError(t, fx.svc.Participate(c))
	assert.Contains(t, c.sentTexts(), textNoActiveCampaign)
	assert.Zero(t, fx.admission.registers)
}

func TestCancelClearsState(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)
	require.NoError(t, fx.svc.StartCampaignCreate(newFakeCtx(operator).withText(1, "")))
	require.True(t, fx.states.Get(operator).InFlow())

	c := newFakeCtx(operator).withText(2, "/cancel")
	require.NoError(t, fx.svc.Cancel(c))
	assert.False(t, fx.states.Get(operator).InFlow())
	assert.Contains(t, c.sentTexts(), textCancelled)
}

func TestCampaignEditPublishesThroughAnchor(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	id, err := fx.records.CreateCampaign(context.Background(), "old-photo", "Old", time.Now())
	require.NoError(t, err)
	const operator = int64(500)

	require.NoError(t, fx.svc.StartCampaignEdit(newFakeCtx(operator).withText(1, "")))
	conv := fx.states.Get(operator)
	assert.Equal(t, id, conv.Draft.CampaignID)

	fx.dispatch(t, newFakeCtx(operator).withPhoto(2, "new-photo"))
	fx.dispatch(t, newFakeCtx(operator).withText(3, "Renamed"))
	fx.dispatch(t, newFakeCtx(operator).withText(4, "01.01.2030"))
	require.NoError(t, fx.svc.CampaignPublish(newFakeCtx(operator).withCallback(5, CbCampaignPublish)))

	updated := fx.records.campaigns[id]
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "new-photo", updated.MediaRef)
	assert.Equal(t, 1, fx.publisher.campaigns)
	assert.Len(t, fx.records.campaigns, 1, "edit must not create a second campaign")
}

func TestVerifyUserCommand(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)

	c := newFakeCtx(operator).withText(1, "/verify_user 123456 +79991234567")
	require.NoError(t, fx.svc.VerifyUser(c))
	assert.Equal(t, "+79991234567", fx.admission.verified[123456])
	assert.Contains(t, c.sentTexts(), textVerifyDone)

	again := newFakeCtx(operator).withText(2, "/verify_user 123456 +79991234567")
	require.NoError(t, fx.svc.VerifyUser(again))
	assert.Contains(t, again.sentTexts(), textVerifyExisted)
}

func TestVerifyUserInteractive(t *testing.T) {
	fx := newFlowFixture(t, gate.DecisionUnknown)
	const operator = int64(500)

	require.NoError(t, fx.svc.VerifyUser(newFakeCtx(operator).withText(1, "/verify_user")))
	require.True(t, fx.states.Get(operator).InFlow())

	bad := newFakeCtx(operator).withText(2, "garbage")
	fx.dispatch(t, bad)
	assert.Contains(t, bad.sentTexts(), textVerifyBadInput)
	assert.True(t, fx.states.Get(operator).InFlow(), "bad input keeps the step open")

	good := newFakeCtx(operator).withText(3, "777 +79990001122")
	fx.dispatch(t, good)
	assert.Equal(t, "+79990001122", fx.admission.verified[777])
	assert.False(t, fx.states.Get(operator).InFlow())
}
