package feed

import (
	"sort"
	"sync"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

type NoticeKind string

const (
	NoticeAccepted        NoticeKind = "accepted"
	NoticeRejected        NoticeKind = "rejected"
	NoticeFeedbackUpdated NoticeKind = "feedback_updated"
)

// Notice is a user-facing signal derived from an event, fired at most once
// per observed transition.
type Notice struct {
	Kind         NoticeKind
	SubmissionID common.UUID
	Status       submission.Status
	Feedback     string
}

// Reconciler maintains a client's working set of submissions and decides
// which notices to surface. Re-delivery of an already-observed transition
// (a reconnect replay, for instance) produces no second notice: the last
// observed status and feedback per submission are the suppression keys.
type Reconciler struct {
	mu           sync.Mutex
	byID         map[common.UUID]submission.Submission
	lastStatus   map[common.UUID]submission.Status
	lastFeedback map[common.UUID]string
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		byID:         make(map[common.UUID]submission.Submission),
		lastStatus:   make(map[common.UUID]submission.Status),
		lastFeedback: make(map[common.UUID]string),
	}
}

// Seed loads an initial snapshot without generating notices; whatever state
// the snapshot carries counts as already observed.
func (r *Reconciler) Seed(items []submission.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.byID[item.ID] = item
		r.lastStatus[item.ID] = item.Status
		r.lastFeedback[item.ID] = item.Feedback
	}
}

// Apply folds one event into the working set and returns the notices it
// warrants. A submission seen for the first time establishes its baseline
// silently, so a create never fires a terminal-transition notice.
func (r *Reconciler) Apply(event submission.Event) []Notice {
	if event.New == nil {
		return nil
	}
	next := *event.New

	r.mu.Lock()
	defer r.mu.Unlock()

	_, known := r.lastStatus[next.ID]
	r.byID[next.ID] = next

	var notices []Notice
	if known {
		if next.Status != submission.StatusPending && r.lastStatus[next.ID] != next.Status {
			kind := NoticeAccepted
			if next.Status == submission.StatusRejected {
				kind = NoticeRejected
			}
			notices = append(notices, Notice{Kind: kind, SubmissionID: next.ID, Status: next.Status, Feedback: next.Feedback})
		}
		if next.Feedback != "" && r.lastFeedback[next.ID] != next.Feedback {
			notices = append(notices, Notice{Kind: NoticeFeedbackUpdated, SubmissionID: next.ID, Status: next.Status, Feedback: next.Feedback})
		}
	}
	r.lastStatus[next.ID] = next.Status
	r.lastFeedback[next.ID] = next.Feedback
	return notices
}

// Items returns the working set newest-first, matching the repository's
// list order. Replacement keeps position because created_at is immutable.
func (r *Reconciler) Items() []submission.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]submission.Submission, 0, len(r.byID))
	for _, item := range r.byID {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// Get looks a submission up in the working set.
func (r *Reconciler) Get(id common.UUID) (submission.Submission, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	return item, ok
}
