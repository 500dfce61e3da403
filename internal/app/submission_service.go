package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/user"
	"github.com/Charbel-5/moondev-coding-challenge/internal/storage"
)

// Publisher pushes a mutation event onto the change feed.
type Publisher interface {
	Publish(ctx context.Context, event submission.Event)
}

// Notifier sends the outbound message for a review transition. The bool
// result reports whether a message actually went out; a skipped
// non-transition is (false, nil).
type Notifier interface {
	Dispatch(ctx context.Context, old, updated *submission.Submission) (bool, error)
}

type SubmissionService struct {
	repo     submission.Repository
	feed     Publisher
	notifier Notifier
	logger   *slog.Logger
}

func NewSubmissionService(repo submission.Repository, feed Publisher, notifier Notifier, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, feed: feed, notifier: notifier, logger: logger}
}

// Patch is the full mutable surface of a submission. Which half an actor
// may touch depends on their role; Update rejects out-of-role fields.
type Patch struct {
	submission.OwnerPatch
	submission.ReviewPatch
}

func (p Patch) hasOwnerFields() bool {
	return p.FullName != nil || p.Phone != nil || p.Location != nil || p.Email != nil ||
		p.Hobbies != nil || p.ProfilePicture != nil || p.SourceCode != nil
}

func (p Patch) hasReviewFields() bool {
	return p.Status != nil || p.Feedback != nil
}

// Submit creates the applicant's submission, or updates it when one already
// exists: creation is idempotent per owner, a second submit is an update.
// The bool result reports whether a new record was created.
func (s *SubmissionService) Submit(ctx context.Context, actor user.Identity, patch submission.OwnerPatch) (*submission.Submission, bool, error) {
	if actor.Role != user.RoleApplicant {
		return nil, false, common.NewError(common.CodeForbidden, "only applicants may submit", nil)
	}
	if err := s.checkArtifactOwnership(actor.UserID, patch); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByOwner(ctx, actor.UserID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, false, err
	}
	if existing != nil {
		updated, err := s.repo.UpdateOwnerFields(ctx, existing.ID, patch)
		if err != nil {
			return nil, false, err
		}
		s.feed.Publish(ctx, submission.Event{Old: existing, New: updated})
		return updated, false, nil
	}

	created, err := s.repo.Create(ctx, newSubmission(actor.UserID, patch))
	if common.Is(err, common.CodeConflict) {
		// Lost a create race against another client of the same owner;
		// fold this submit into an update of the winner.
		winner, getErr := s.repo.GetByOwner(ctx, actor.UserID)
		if getErr != nil {
			return nil, false, err
		}
		updated, updErr := s.repo.UpdateOwnerFields(ctx, winner.ID, patch)
		if updErr != nil {
			return nil, false, updErr
		}
		s.feed.Publish(ctx, submission.Event{Old: winner, New: updated})
		return updated, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.feed.Publish(ctx, submission.Event{New: created})
	return created, true, nil
}

// UpdateOutcome is the result of a successful Update. Notified is true
// only when a notification message was actually delivered; NotifyErr
// carries a best-effort delivery failure that did not roll back the write.
type UpdateOutcome struct {
	Submission *submission.Submission
	Notified   bool
	NotifyErr  error
}

// Update applies a role-scoped patch. Every successful update emits an
// {old, new} event even when nothing review-relevant changed; consumers
// diff for themselves. The notification dispatch below is the only call
// site in the codebase — handlers never dispatch on their own.
func (s *SubmissionService) Update(ctx context.Context, actor user.Identity, id common.UUID, patch Patch) (*UpdateOutcome, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *submission.Submission
	switch actor.Role {
	case user.RoleApplicant:
		if patch.hasReviewFields() {
			return nil, common.NewError(common.CodeForbidden, "applicants may not change status or feedback", nil)
		}
		if before.OwnerID != actor.UserID {
			return nil, common.NewError(common.CodeForbidden, "submission belongs to another applicant", nil)
		}
		if err := s.checkArtifactOwnership(actor.UserID, patch.OwnerPatch); err != nil {
			return nil, err
		}
		updated, err = s.repo.UpdateOwnerFields(ctx, id, patch.OwnerPatch)
	case user.RoleReviewer:
		if patch.hasOwnerFields() {
			return nil, common.NewError(common.CodeForbidden, "reviewers may not change profile or artifacts", nil)
		}
		if err := validateReviewPatch(before, patch.ReviewPatch); err != nil {
			return nil, err
		}
		updated, err = s.repo.UpdateReview(ctx, id, patch.ReviewPatch)
	default:
		return nil, common.NewError(common.CodeForbidden, "unknown role", nil)
	}
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ctx, submission.Event{Old: before, New: updated})

	out := &UpdateOutcome{Submission: updated}
	if actor.Role == user.RoleReviewer && shouldDispatch(before, updated) {
		out.Notified, out.NotifyErr = s.notifier.Dispatch(ctx, before, updated)
	}
	return out, nil
}

func (s *SubmissionService) Get(ctx context.Context, id common.UUID) (*submission.Submission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SubmissionService) GetByOwner(ctx context.Context, ownerID common.UUID) (*submission.Submission, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// List returns submissions newest-first, optionally filtered by a
// case-insensitive substring over name, email, and location.
func (s *SubmissionService) List(ctx context.Context, query string) ([]submission.Submission, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}
	filtered := make([]submission.Submission, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.FullName), query) ||
			strings.Contains(strings.ToLower(item.Email), query) ||
			strings.Contains(strings.ToLower(item.Location), query) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func newSubmission(ownerID common.UUID, patch submission.OwnerPatch) submission.Submission {
	sub := submission.Submission{OwnerID: ownerID, Status: submission.StatusPending}
	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&sub.FullName, patch.FullName)
	applyString(&sub.Phone, patch.Phone)
	applyString(&sub.Location, patch.Location)
	applyString(&sub.Email, patch.Email)
	applyString(&sub.Hobbies, patch.Hobbies)
	applyString(&sub.ProfilePicture, patch.ProfilePicture)
	applyString(&sub.SourceCode, patch.SourceCode)
	return sub
}

// validateReviewPatch enforces the transition rules: pending may move to
// accepted or rejected, a decision may be reversed between accepted and
// rejected, and pending is never re-entered by reviewer action. Feedback
// may be edited at any time.
func validateReviewPatch(current *submission.Submission, patch submission.ReviewPatch) error {
	if patch.Status == nil {
		return nil
	}
	next := submission.Status(strings.ToLower(strings.TrimSpace(string(*patch.Status))))
	switch next {
	case submission.StatusAccepted, submission.StatusRejected:
		*patch.Status = next
		return nil
	case submission.StatusPending:
		return common.NewError(common.CodeValidation, "a submission cannot be returned to pending", nil)
	default:
		return common.NewValidationError("invalid status", map[string]string{"status": "status must be accepted or rejected"})
	}
}

// shouldDispatch gates notification on a real transition: status or
// feedback changed and the submission is out of pending.
func shouldDispatch(old, updated *submission.Submission) bool {
	if updated == nil || updated.Status == submission.StatusPending {
		return false
	}
	event := submission.Event{Old: old, New: updated}
	return event.StatusChanged() || event.FeedbackChanged()
}

// checkArtifactOwnership keeps the stored-reference invariant: an artifact
// reference must resolve to the expected bucket and live under the owner's
// own prefix, so one applicant cannot point their record at another's
// objects.
func (s *SubmissionService) checkArtifactOwnership(ownerID common.UUID, patch submission.OwnerPatch) error {
	check := func(raw *string, bucket, field string) error {
		if raw == nil || *raw == "" {
			return nil
		}
		ref, err := storage.ResolveReference(*raw)
		if err != nil {
			return common.NewValidationError("invalid artifact reference", map[string]string{field: "reference format not recognized"})
		}
		if ref.Bucket != bucket {
			return common.NewError(common.CodeForbidden, "artifact reference points at the wrong bucket", nil)
		}
		if !strings.HasPrefix(ref.Path, ownerID.String()+"/") {
			return common.NewError(common.CodeForbidden, "artifact reference belongs to another owner", nil)
		}
		return nil
	}
	if err := check(patch.ProfilePicture, storage.BucketProfilePictures, "profile_picture"); err != nil {
		return err
	}
	return check(patch.SourceCode, storage.BucketSourceCode, "source_code")
}
