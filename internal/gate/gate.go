// Package gate decides whether a user may register for a campaign:
// prior registration first, then channel membership, then one-time
// phone verification.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/internal/store"
)

// Decision is the admission verdict for one (user, campaign) pair.
type Decision int

const (
	// DecisionUnknown means evaluation did not complete.
	DecisionUnknown Decision = iota
	// AlreadyRegistered: terminal, no side effects allowed.
	AlreadyRegistered
	// NotSubscribed: user must join the channel first. When Evaluate
	// also returns an error the membership probe itself failed and the
	// user should be offered a retry, not a subscription denial.
	NotSubscribed
	// NeedsVerification: subscribed but no verified phone yet.
	NeedsVerification
	// CanRegister: subscribed and verified; the caller registers
	// immediately with the stored phone, without prompting.
	CanRegister
)

func (d Decision) String() string {
	switch d {
	case AlreadyRegistered:
		return "already_registered"
	case NotSubscribed:
		return "not_subscribed"
	case NeedsVerification:
		return "needs_verification"
	case CanRegister:
		return "can_register"
	default:
		return "unknown"
	}
}

// Records is the slice of the store the gate needs.
type Records interface {
	RegistrationExists(ctx context.Context, campaignID, userID int64) (bool, error)
	VerifiedPhone(ctx context.Context, userID int64) (string, error)
	InsertRegistration(ctx context.Context, campaignID, userID int64, displayName, phone string) (bool, error)
	MarkVerified(ctx context.Context, userID int64, phone string) (bool, error)
}

// Membership probes the broadcast channel for the user's status.
type Membership interface {
	IsChannelMember(ctx context.Context, userID int64) (bool, error)
}

// Gate evaluates admission and performs registrations.
type Gate struct {
	records    Records
	membership Membership
}

func New(records Records, membership Membership) *Gate {
	return &Gate{records: records, membership: membership}
}

// Evaluate runs the admission checks in order. phone is set only for
// CanRegister and carries the previously verified number for the
// silent fast path. A non-nil error alongside NotSubscribed marks a
// failed membership probe rather than an actual denial.
func (g *Gate) Evaluate(ctx context.Context, userID, campaignID int64) (Decision, string, error) {
	registered, err := g.records.RegistrationExists(ctx, campaignID, userID)
	if err != nil {
		return DecisionUnknown, "", fmt.Errorf("gate: registration check: %w", err)
	}
	if registered {
		g.logDecision(ctx, userID, campaignID, AlreadyRegistered)
		return AlreadyRegistered, "", nil
	}

	subscribed, err := g.membership.IsChannelMember(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "gate", "membership_probe_failed",
			slog.Int64("campaign_id", campaignID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
		return NotSubscribed, "", fmt.Errorf("gate: membership probe: %w", err)
	}
	if !subscribed {
		g.logDecision(ctx, userID, campaignID, NotSubscribed)
		return NotSubscribed, "", nil
	}

	phone, err := g.records.VerifiedPhone(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		g.logDecision(ctx, userID, campaignID, NeedsVerification)
		return NeedsVerification, "", nil
	case err != nil:
		return DecisionUnknown, "", fmt.Errorf("gate: verified lookup: %w", err)
	}
	g.logDecision(ctx, userID, campaignID, CanRegister)
	return CanRegister, phone, nil
}

// Register marks the identity verified (first time only) and inserts
// the registration. Both statements are idempotent, so a redelivered
// completion is safe. inserted reports whether this call created the
// registration row.
func (g *Gate) Register(ctx context.Context, campaignID, userID int64, displayName, phone string) (inserted bool, err error) {
	if _, err := g.records.MarkVerified(ctx, userID, phone); err != nil {
		return false, fmt.Errorf("gate: mark verified: %w", err)
	}
	inserted, err = g.records.InsertRegistration(ctx, campaignID, userID, displayName, phone)
	if err != nil {
		return false, fmt.Errorf("gate: insert registration: %w", err)
	}
	status := "ok"
	if !inserted {
		status = "duplicate"
	}
	logger.Info(ctx, "gate", "registered",
		slog.Int64("campaign_id", campaignID),
		slog.String("status", status),
	)
	return inserted, nil
}

// ForceVerify lets an operator vouch for a user manually. fresh is
// false when the user was already verified.
func (g *Gate) ForceVerify(ctx context.Context, userID int64, phone string) (fresh bool, err error) {
	fresh, err = g.records.MarkVerified(ctx, userID, phone)
	if err != nil {
		return false, fmt.Errorf("gate: force verify %d: %w", userID, err)
	}
	status := "ok"
	if !fresh {
		status = "duplicate"
	}
	logger.Info(ctx, "gate", "force_verified",
		slog.Int64("user_id", userID),
		slog.String("status", status),
	)
	return fresh, nil
}

func (g *Gate) logDecision(ctx context.Context, userID, campaignID int64, d Decision) {
	logger.Info(ctx, "gate", "decision",
		slog.Int64("user_id", userID),
		slog.Int64("campaign_id", campaignID),
		slog.String("decision", d.String()),
	)
}
