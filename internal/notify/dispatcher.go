// Package notify sends the outbound message that accompanies a review
// decision. Delivery is best-effort: the repository write that triggered a
// dispatch is never rolled back on relay failure.
package notify

import (
	"context"
	"log/slog"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

// Message is what the outbound relay accepts.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type Relay interface {
	Send(ctx context.Context, msg Message) error
}

type Dispatcher struct {
	relay  Relay
	logger *slog.Logger
}

func NewDispatcher(relay Relay, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{relay: relay, logger: logger}
}

// Dispatch sends exactly one message describing the transition from old to
// new, reporting whether a message actually went out: a skipped
// non-transition is (false, nil), not a delivery. The submission service
// is the single call site; the skip conditions are still re-checked here
// so a misrouted call cannot mail anyone about a non-transition.
func (d *Dispatcher) Dispatch(ctx context.Context, old, updated *submission.Submission) (bool, error) {
	if updated == nil || updated.Email == "" {
		return false, nil
	}
	if updated.Status == submission.StatusPending {
		return false, nil
	}
	event := submission.Event{Old: old, New: updated}
	if !event.StatusChanged() && !event.FeedbackChanged() {
		return false, nil
	}

	msg, err := buildMessage(updated)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "build notification message", err)
	}
	if err := d.relay.Send(ctx, msg); err != nil {
		d.logger.Error("notification delivery failed",
			"submission_id", updated.ID.String(),
			"status", string(updated.Status),
			"error", err)
		return false, common.NewError(common.CodeUpstream, "notification delivery failed", err)
	}
	d.logger.Info("notification sent",
		"submission_id", updated.ID.String(),
		"status", string(updated.Status))
	return true, nil
}
