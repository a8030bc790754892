package publish

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/telegram/sender"
	"github.com/bazumi/promobot/internal/store"
)

// fakeChannel models the broadcast channel: live message ids plus
// forced failures.
type fakeChannel struct {
	mu         sync.Mutex
	nextID     int
	live       map[int]bool
	editErr    error
	deleteErr  error
	sendErr    error
	resolveErr error
	sends      int
	edits      int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{nextID: 100, live: make(map[int]bool)}
}

func (f *fakeChannel) Send(_ tele.Recipient, _ interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sends++
	f.nextID++
	f.live[f.nextID] = true
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeChannel) EditMedia(msg tele.Editable, _ tele.Inputtable, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	sig, _ := msg.MessageSig()
	id, err := strconv.Atoi(sig)
	if err != nil || !f.live[id] {
		return nil, errors.New("telegram: message to edit not found (400)")
	}
	f.edits++
	return &tele.Message{ID: id}, nil
}

func (f *fakeChannel) Delete(msg tele.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	sig, _ := msg.MessageSig()
	id, _ := strconv.Atoi(sig)
	if !f.live[id] {
		return errors.New("telegram: message to delete not found (400)")
	}
	delete(f.live, id)
	return nil
}

func (f *fakeChannel) ChatByUsername(string) (*tele.Chat, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &tele.Chat{ID: -1001234}, nil
}

func (f *fakeChannel) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

type fakeAnchors struct {
	mu                   sync.Mutex
	campaignAnchors      map[int64]int64
	announcementAnchors  map[int64]int64
	deactivated          []int64
	setCampaignAnchorErr error
}

func newFakeAnchors() *fakeAnchors {
	return &fakeAnchors{
		campaignAnchors:     make(map[int64]int64),
		announcementAnchors: make(map[int64]int64),
	}
}

func (f *fakeAnchors) SetCampaignAnchor(_ context.Context, id, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setCampaignAnchorErr != nil {
		return f.setCampaignAnchorErr
	}
	f.campaignAnchors[id] = messageID
	return nil
}

func (f *fakeAnchors) SetAnnouncementAnchor(_ context.Context, id, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcementAnchors[id] = messageID
	return nil
}

func (f *fakeAnchors) DeactivateCampaign(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return nil
}

func campaign(id int64, anchor int64) *store.Campaign {
	c := &store.Campaign{
		ID:       id,
		MediaRef: "photo-file-id",
		Title:    "Plush Fox",
		EndDate:  time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:   store.StatusActive,
	}
	if anchor != 0 {
		c.Anchor = sql.NullInt64{Int64: anchor, Valid: true}
	}
	return c
}

func TestFirstPublishStoresAnchor(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	res, err := p.PublishCampaign(context.Background(), campaign(1, 0), "caption", nil)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.NotZero(t, res.MessageID)
	assert.Equal(t, res.MessageID, anchors.campaignAnchors[1])
	assert.Equal(t, 1, channel.liveCount())
}

func TestRepublishEditsInPlace(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	first, err := p.PublishCampaign(context.Background(), campaign(1, 0), "v1", nil)
	require.NoError(t, err)

	second, err := p.PublishCampaign(context.Background(), campaign(1, first.MessageID), "v2", nil)
	require.NoError(t, err)
	assert.False(t, second.Fallback)
	assert.Equal(t, first.MessageID, second.MessageID, "edit keeps the same message")

	third, err := p.PublishCampaign(context.Background(), campaign(1, second.MessageID), "v3", nil)
	require.NoError(t, err)
	assert.Equal(t, first.MessageID, third.MessageID)
	assert.Equal(t, 1, channel.liveCount(), "publish -> edit -> edit leaves exactly one live message")
	assert.Equal(t, 1, channel.sends)
	assert.Equal(t, 2, channel.edits)
}

func TestEditFailureFallsBackToFreshSend(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	res, err := p.PublishCampaign(context.Background(), campaign(1, 555), "caption", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback, "stale anchor must be reported to the operator")
	assert.NotEqual(t, int64(555), res.MessageID)
	assert.Equal(t, res.MessageID, anchors.campaignAnchors[1], "anchor must be overwritten")
}

func TestChannelResolveFailureStillPublishes(t *testing.T) {
	channel := newFakeChannel()
	channel.resolveErr = errors.New("telegram: chat not found (400)")
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	res, err := p.PublishCampaign(context.Background(), campaign(1, 555), "caption", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
}

func TestRetractToleratesMissingMessage(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	// Anchor points at a message already gone from the channel.
	err := p.RetractCampaign(context.Background(), campaign(1, 999))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, anchors.deactivated, "row must be deactivated despite delete failure")
}

func TestRetractDeletesLiveMessage(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	res, err := p.PublishCampaign(context.Background(), campaign(1, 0), "caption", nil)
	require.NoError(t, err)

	err = p.RetractCampaign(context.Background(), campaign(1, res.MessageID))
	require.NoError(t, err)
	assert.Equal(t, 0, channel.liveCount())
	assert.Equal(t, []int64{1}, anchors.deactivated)
}

func TestPublishAnnouncement(t *testing.T) {
	channel := newFakeChannel()
	anchors := newFakeAnchors()
	p := New(channel, anchors, "@promo")

	a := &store.Announcement{ID: 7, MediaRef: "file", Title: "News", Body: "text"}
	res, err := p.PublishAnnouncement(context.Background(), a, "caption", nil)
	require.NoError(t, err)
	assert.Equal(t, res.MessageID, anchors.announcementAnchors[7])
}

// recipientSender fails for the listed user ids, mimicking blocked
// recipients.
type recipientSender struct {
	mu      sync.Mutex
	blocked map[int64]bool
	sent    []int64
}

func (r *recipientSender) Send(to tele.Recipient, _ interface{}, _ ...interface{}) (*tele.Message, error) {
	id, err := strconv.ParseInt(to.Recipient(), 10, 64)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blocked[id] {
		return nil, &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}
	}
	r.sent = append(r.sent, id)
	return &tele.Message{ID: 1}, nil
}

func TestBroadcastIsolatesRecipientFailures(t *testing.T) {
	api := &recipientSender{blocked: map[int64]bool{2: true, 4: true}}
	d := sender.New(sender.Options{Workers: 3, QueueSize: 16, MaxRetries: 1, Backoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	b := NewBroadcaster(api, d)
	a := &store.Announcement{ID: 7, MediaRef: "file", Title: "News"}
	sent, failed := b.Broadcast(context.Background(), a, "caption", []int64{1, 2, 3, 4, 5})

	assert.Equal(t, 3, sent)
	assert.Equal(t, 2, failed)
	assert.ElementsMatch(t, []int64{1, 3, 5}, api.sent)
}
