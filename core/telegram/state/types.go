package state

import (
	"time"

	"github.com/google/uuid"
)

// Flow identifies a multi-step conversation a user can be inside.
type Flow string

const (
	FlowNone               Flow = ""
	FlowCampaignCreate     Flow = "campaign_create"
	FlowCampaignEdit       Flow = "campaign_edit"
	FlowAnnouncementCreate Flow = "announcement_create"
	FlowParticipation      Flow = "participation"
	FlowContactVerify      Flow = "contact_verify"
	FlowVerifyUser         Flow = "verify_user"
)

// Step identifies the position inside a flow.
type Step string

const (
	StepNone         Step = ""
	StepAwaitPhoto   Step = "await_photo"
	StepAwaitTitle   Step = "await_title"
	StepAwaitDate    Step = "await_date"
	StepAwaitBody    Step = "await_body"
	StepPreview      Step = "preview"
	StepAwaitContact Step = "await_contact"
	StepAwaitUserID  Step = "await_user_id"
)

// Slot names an input position guarded against duplicate delivery.
// Telegram can deliver the same update twice (retries, re-polls), and
// albums fan out one update per photo. Each accepting step claims its
// slot with the triggering message id before side effects run, so a
// replay or album sibling is recognized and skipped.
type Slot string

const (
	SlotPhoto    Slot = "photo"
	SlotTitle    Slot = "title"
	SlotDate     Slot = "date"
	SlotBody     Slot = "body"
	SlotContact  Slot = "contact"
	SlotUserID   Slot = "user_id"
	SlotDecision Slot = "decision"
)

// Draft accumulates flow input until the final commit.
type Draft struct {
	CampaignID     int64
	AnnouncementID int64
	PhotoFileID    string
	Title          string
	EndDate        string
	Body           string
	Phone          string
	// Screen names the menu section that requested verification, so
	// the flow can land the user there once the contact arrives.
	Screen string
}

// Conversation is one user's live flow state.
type Conversation struct {
	Flow   Flow
	FlowID string
	Step   Step
	Draft  Draft

	// seen maps each slot to the message id that claimed it.
	seen    map[Slot]int
	history []string

	UpdatedAt time.Time
}

func newConversation(flow Flow, step Step) *Conversation {
	return &Conversation{
		Flow:      flow,
		FlowID:    uuid.NewString(),
		Step:      step,
		seen:      map[Slot]int{},
		UpdatedAt: time.Now(),
	}
}

// Begin claims slot for the message id. It returns true exactly once
// per (slot, message) pair; repeated deliveries and album siblings get
// false. A different message id while the slot is still claimed also
// gets false, which serializes concurrent input on the same step.
// Call Begin BEFORE any side effect of processing the input.
func (c *Conversation) Begin(slot Slot, msgID int) bool {
	if c.seen == nil {
		c.seen = map[Slot]int{}
	}
	if _, claimed := c.seen[slot]; claimed {
		return false
	}
	c.seen[slot] = msgID
	c.UpdatedAt = time.Now()
	return true
}

// Seen reports whether the exact (slot, message) pair was already
// claimed. Used to distinguish a replay from a competing message.
func (c *Conversation) Seen(slot Slot, msgID int) bool {
	if c.seen == nil {
		return false
	}
	id, ok := c.seen[slot]
	return ok && id == msgID
}

// CloseSlot releases the slot so the step can accept fresh input, for
// example after validation rejected the previous attempt.
func (c *Conversation) CloseSlot(slot Slot) {
	if c.seen == nil {
		return
	}
	delete(c.seen, slot)
	c.UpdatedAt = time.Now()
}

// Advance moves the conversation to the next step and releases every
// slot claim, since a new step means new expected input.
func (c *Conversation) Advance(step Step) {
	c.Step = step
	c.seen = map[Slot]int{}
	c.UpdatedAt = time.Now()
}

// PushScreen records the screen the user is leaving so Back can return
// to it. Consecutive duplicates are collapsed.
func (c *Conversation) PushScreen(screen string) {
	if screen == "" {
		return
	}
	if n := len(c.history); n > 0 && c.history[n-1] == screen {
		return
	}
	c.history = append(c.history, screen)
	c.UpdatedAt = time.Now()
}

// Back pops and returns the most recent screen. ok is false when the
// stack is empty, in which case the caller shows the root menu.
func (c *Conversation) Back() (screen string, ok bool) {
	n := len(c.history)
	if n == 0 {
		return "", false
	}
	screen = c.history[n-1]
	c.history = c.history[:n-1]
	c.UpdatedAt = time.Now()
	return screen, true
}

// ResetHistory clears the screen stack, used when jumping to the main
// menu.
func (c *Conversation) ResetHistory() {
	c.history = nil
	c.UpdatedAt = time.Now()
}

// HistoryDepth reports the current stack size.
func (c *Conversation) HistoryDepth() int {
	return len(c.history)
}

// InFlow reports whether the user is inside an active flow.
func (c *Conversation) InFlow() bool {
	return c != nil && c.Flow != FlowNone
}
