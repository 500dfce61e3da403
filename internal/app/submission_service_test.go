package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/user"
)

type fakeSubmissionRepo struct {
	mu      sync.Mutex
	byID    map[common.UUID]*submission.Submission
	byOwner map[common.UUID]common.UUID
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		byID:    make(map[common.UUID]*submission.Submission),
		byOwner: make(map[common.UUID]common.UUID),
	}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub submission.Submission) (*submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOwner[sub.OwnerID]; exists {
		return nil, common.NewError(common.CodeConflict, "submission already exists for owner", nil)
	}
	sub.ID = common.NewUUID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	stored := sub
	r.byID[stored.ID] = &stored
	r.byOwner[stored.OwnerID] = stored.ID
	return cloneSubmission(&stored), nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id common.UUID) (*submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.byID[id]
	if stored == nil {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	return cloneSubmission(stored), nil
}

func (r *fakeSubmissionRepo) GetByOwner(ctx context.Context, ownerID common.UUID) (*submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byOwner[ownerID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	return cloneSubmission(r.byID[id]), nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context) ([]submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]submission.Submission, 0, len(r.byID))
	for _, stored := range r.byID {
		items = append(items, *cloneSubmission(stored))
	}
	return items, nil
}

func (r *fakeSubmissionRepo) UpdateOwnerFields(ctx context.Context, id common.UUID, patch submission.OwnerPatch) (*submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.byID[id]
	if stored == nil {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&stored.FullName, patch.FullName)
	apply(&stored.Phone, patch.Phone)
	apply(&stored.Location, patch.Location)
	apply(&stored.Email, patch.Email)
	apply(&stored.Hobbies, patch.Hobbies)
	apply(&stored.ProfilePicture, patch.ProfilePicture)
	apply(&stored.SourceCode, patch.SourceCode)
	stored.UpdatedAt = time.Now().UTC()
	return cloneSubmission(stored), nil
}

func (r *fakeSubmissionRepo) UpdateReview(ctx context.Context, id common.UUID, patch submission.ReviewPatch) (*submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.byID[id]
	if stored == nil {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.Feedback != nil {
		stored.Feedback = *patch.Feedback
	}
	stored.UpdatedAt = time.Now().UTC()
	return cloneSubmission(stored), nil
}

func cloneSubmission(stored *submission.Submission) *submission.Submission {
	copy := *stored
	return &copy
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []submission.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event submission.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type dispatchCall struct {
	old     *submission.Submission
	updated *submission.Submission
}

type capturingNotifier struct {
	mu          sync.Mutex
	calls       []dispatchCall
	dispatchErr error
}

func (n *capturingNotifier) Dispatch(ctx context.Context, old, updated *submission.Submission) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, dispatchCall{old: old, updated: updated})
	if n.dispatchErr != nil {
		return false, n.dispatchErr
	}
	return true, nil
}

func newTestService(t *testing.T) (*SubmissionService, *fakeSubmissionRepo, *capturingPublisher, *capturingNotifier) {
	t.Helper()
	repo := newFakeSubmissionRepo()
	publisher := &capturingPublisher{}
	notifier := &capturingNotifier{}
	service := NewSubmissionService(repo, publisher, notifier, slog.New(slog.DiscardHandler))
	return service, repo, publisher, notifier
}

func strPtr(value string) *string {
	return &value
}

func statusPtr(status submission.Status) *submission.Status {
	return &status
}

func applicantIdentity() user.Identity {
	return user.Identity{UserID: common.NewUUID(), Role: user.RoleApplicant}
}

func reviewerIdentity() user.Identity {
	return user.Identity{UserID: common.NewUUID(), Role: user.RoleReviewer}
}

func basePatch() submission.OwnerPatch {
	return submission.OwnerPatch{
		FullName: strPtr("Jordan Reyes"),
		Phone:    strPtr("+1 (555) 123-4567"),
		Location: strPtr("Lisbon"),
		Email:    strPtr("jordan@example.com"),
		Hobbies:  strPtr("Climbing, open source, photography."),
	}
}

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	service, _, publisher, _ := newTestService(t)
	actor := applicantIdentity()

	created, isNew, err := service.Submit(context.Background(), actor, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !isNew {
		t.Fatal("expected first submit to create")
	}
	if created.Status != submission.StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.OwnerID != actor.UserID {
		t.Fatalf("expected owner %s, got %s", actor.UserID, created.OwnerID)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}
	if publisher.events[0].Old != nil {
		t.Fatal("expected create event to carry nil old")
	}
}

func TestSubmitIsIdempotentPerOwner(t *testing.T) {
	service, repo, publisher, _ := newTestService(t)
	actor := applicantIdentity()

	first, _, err := service.Submit(context.Background(), actor, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := basePatch()
	patch.Location = strPtr("Porto")
	second, isNew, err := service.Submit(context.Background(), actor, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if isNew {
		t.Fatal("expected second submit to update, not create")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same submission, got %s and %s", first.ID, second.ID)
	}
	if second.Location != "Porto" {
		t.Fatalf("expected updated location, got %q", second.Location)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly 1 record, got %d", len(repo.byID))
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(publisher.events))
	}
	if publisher.events[1].Old == nil || publisher.events[1].Old.Location != "Lisbon" {
		t.Fatal("expected update event to carry the prior state")
	}
}

func TestSubmitRejectsReviewer(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, _, err := service.Submit(context.Background(), reviewerIdentity(), basePatch())
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestSubmitRejectsForeignArtifactReference(t *testing.T) {
	service, _, _, _ := newTestService(t)
	actor := applicantIdentity()

	patch := basePatch()
	patch.ProfilePicture = strPtr("https://store.example/storage/v1/object/public/profile-pictures/someone-else/1.png")
	_, _, err := service.Submit(context.Background(), actor, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	patch = basePatch()
	patch.SourceCode = strPtr("https://store.example/storage/v1/object/public/profile-pictures/" + actor.UserID.String() + "/app.zip")
	_, _, err = service.Submit(context.Background(), actor, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected wrong-bucket reference to be forbidden, got %v", err)
	}

	patch = basePatch()
	patch.ProfilePicture = strPtr("not a reference")
	_, _, err = service.Submit(context.Background(), actor, patch)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitAcceptsOwnArtifactReference(t *testing.T) {
	service, _, _, _ := newTestService(t)
	actor := applicantIdentity()

	patch := basePatch()
	patch.ProfilePicture = strPtr("https://store.example/storage/v1/object/public/profile-pictures/" + actor.UserID.String() + "/1-p.png")
	patch.SourceCode = strPtr("https://store.example/storage/v1/object/public/source-code/" + actor.UserID.String() + "/2-app.zip")
	created, _, err := service.Submit(context.Background(), actor, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.ProfilePicture == "" || created.SourceCode == "" {
		t.Fatal("expected artifact references to be stored")
	}
}

func TestUpdateApplicantCannotTouchReviewFields(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	actor := applicantIdentity()
	created, _, err := service.Submit(context.Background(), actor, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.StatusAccepted)
	_, err = service.Update(context.Background(), actor, created.ID, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	patch = Patch{}
	patch.Feedback = strPtr("self-approved")
	_, err = service.Update(context.Background(), actor, created.ID, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no dispatch from rejected patches, got %d", len(notifier.calls))
	}
}

func TestUpdateReviewerCannotTouchOwnerFields(t *testing.T) {
	service, _, _, _ := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.FullName = strPtr("Rewritten By Reviewer")
	_, err = service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	got, err := service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.FullName != "Jordan Reyes" {
		t.Fatalf("owner field changed by reviewer patch: %q", got.FullName)
	}
}

func TestUpdateApplicantCannotEditForeignSubmission(t *testing.T) {
	service, _, _, _ := newTestService(t)
	owner := applicantIdentity()
	created, _, err := service.Submit(context.Background(), owner, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Location = strPtr("Madrid")
	_, err = service.Update(context.Background(), applicantIdentity(), created.ID, patch)
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestUpdateReviewerDecisionDispatchesOnce(t *testing.T) {
	service, _, publisher, notifier := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.StatusAccepted)
	out, err := service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.NotifyErr != nil {
		t.Fatalf("expected nil notify error, got %v", out.NotifyErr)
	}
	if !out.Notified {
		t.Fatal("expected the decision to be notified")
	}
	if out.Submission.Status != submission.StatusAccepted {
		t.Fatalf("expected accepted, got %s", out.Submission.Status)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.old.Status != submission.StatusPending || call.updated.Status != submission.StatusAccepted {
		t.Fatalf("dispatch got wrong snapshots: %s -> %s", call.old.Status, call.updated.Status)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected create + update events, got %d", len(publisher.events))
	}
	last := publisher.events[1]
	if last.Old.Status != submission.StatusPending || last.New.Status != submission.StatusAccepted {
		t.Fatalf("event carries wrong pair: %s -> %s", last.Old.Status, last.New.Status)
	}
}

func TestUpdateRejectWithFeedbackDispatchesBothDiffs(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.StatusRejected)
	patch.Feedback = strPtr("Needs tests")
	if _, err := service.Update(context.Background(), reviewerIdentity(), created.ID, patch); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.old.Status != submission.StatusPending || call.old.Feedback != "" {
		t.Fatalf("old snapshot wrong: %s / %q", call.old.Status, call.old.Feedback)
	}
	if call.updated.Status != submission.StatusRejected || call.updated.Feedback != "Needs tests" {
		t.Fatalf("updated snapshot wrong: %s / %q", call.updated.Status, call.updated.Feedback)
	}
}

func TestUpdateDecisionReversalDispatchesAgain(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	reviewer := reviewerIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	accept := Patch{}
	accept.Status = statusPtr(submission.StatusAccepted)
	if _, err := service.Update(context.Background(), reviewer, created.ID, accept); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	reject := Patch{}
	reject.Status = statusPtr(submission.StatusRejected)
	if _, err := service.Update(context.Background(), reviewer, created.ID, reject); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(notifier.calls))
	}
	second := notifier.calls[1]
	if second.old.Status != submission.StatusAccepted || second.updated.Status != submission.StatusRejected {
		t.Fatalf("second dispatch got wrong snapshots: %s -> %s", second.old.Status, second.updated.Status)
	}
}

func TestUpdateCannotReturnToPending(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	reviewer := reviewerIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	accept := Patch{}
	accept.Status = statusPtr(submission.StatusAccepted)
	if _, err := service.Update(context.Background(), reviewer, created.ID, accept); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	back := Patch{}
	back.Status = statusPtr(submission.StatusPending)
	_, err = service.Update(context.Background(), reviewer, created.ID, back)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected the rejected patch not to dispatch, got %d calls", len(notifier.calls))
	}
}

func TestUpdateInvalidStatusRejected(t *testing.T) {
	service, _, _, _ := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.Status("archived"))
	_, err = service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusIsCaseInsensitive(t *testing.T) {
	service, _, _, _ := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.Status(" Accepted "))
	out, err := service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Submission.Status != submission.StatusAccepted {
		t.Fatalf("expected normalized accepted, got %q", out.Submission.Status)
	}
}

func TestUpdateFeedbackOnlyDispatches(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	reviewer := reviewerIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	accept := Patch{}
	accept.Status = statusPtr(submission.StatusAccepted)
	if _, err := service.Update(context.Background(), reviewer, created.ID, accept); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	feedback := Patch{}
	feedback.Feedback = strPtr("Great assessment, onboarding details follow.")
	out, err := service.Update(context.Background(), reviewer, created.ID, feedback)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.NotifyErr != nil {
		t.Fatalf("expected nil notify error, got %v", out.NotifyErr)
	}
	if !out.Notified {
		t.Fatal("expected the feedback edit to be notified")
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("expected feedback edit to dispatch, got %d calls", len(notifier.calls))
	}
}

func TestUpdateNoOpDecisionNotNotified(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	reviewer := reviewerIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	accept := Patch{}
	accept.Status = statusPtr(submission.StatusAccepted)
	out, err := service.Update(context.Background(), reviewer, created.ID, accept)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !out.Notified {
		t.Fatal("expected the first decision to be notified")
	}

	again := Patch{}
	again.Status = statusPtr(submission.StatusAccepted)
	out, err = service.Update(context.Background(), reviewer, created.ID, again)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Notified {
		t.Fatal("expected re-applying the same decision not to notify")
	}
	if out.NotifyErr != nil {
		t.Fatalf("expected nil notify error, got %v", out.NotifyErr)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", len(notifier.calls))
	}
}

func TestUpdateFeedbackOnPendingDoesNotDispatch(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Feedback = strPtr("Looking at this now.")
	out, err := service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.NotifyErr != nil {
		t.Fatalf("expected nil notify error, got %v", out.NotifyErr)
	}
	if out.Notified {
		t.Fatal("expected no notification while pending")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no dispatch while pending, got %d", len(notifier.calls))
	}
}

func TestUpdateNotifyFailureDoesNotRollBack(t *testing.T) {
	service, _, _, notifier := newTestService(t)
	notifier.dispatchErr = errors.New("relay down")
	applicant := applicantIdentity()
	created, _, err := service.Submit(context.Background(), applicant, basePatch())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	patch := Patch{}
	patch.Status = statusPtr(submission.StatusRejected)
	out, err := service.Update(context.Background(), reviewerIdentity(), created.ID, patch)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.NotifyErr == nil {
		t.Fatal("expected notify error to be surfaced")
	}
	if out.Notified {
		t.Fatal("expected Notified false on delivery failure")
	}
	if out.Submission.Status != submission.StatusRejected {
		t.Fatalf("expected the write to stand, got %s", out.Submission.Status)
	}
	got, err := service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Status != submission.StatusRejected {
		t.Fatalf("expected persisted rejected, got %s", got.Status)
	}
}

func TestUpdateUnknownSubmission(t *testing.T) {
	service, _, _, _ := newTestService(t)

	patch := Patch{}
	patch.Status = statusPtr(submission.StatusAccepted)
	_, err := service.Update(context.Background(), reviewerIdentity(), common.NewUUID(), patch)
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListFilter(t *testing.T) {
	service, _, _, _ := newTestService(t)
	first := applicantIdentity()
	if _, _, err := service.Submit(context.Background(), first, basePatch()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	second := applicantIdentity()
	patch := basePatch()
	patch.FullName = strPtr("Alex Chen")
	patch.Email = strPtr("alex@example.com")
	patch.Location = strPtr("Berlin")
	if _, _, err := service.Submit(context.Background(), second, patch); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	all, err := service.List(context.Background(), "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(all))
	}

	matched, err := service.List(context.Background(), "BERLIN")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(matched) != 1 || matched[0].FullName != "Alex Chen" {
		t.Fatalf("expected the Berlin submission, got %+v", matched)
	}

	none, err := service.List(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}
