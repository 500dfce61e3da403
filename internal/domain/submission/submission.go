package submission

import (
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Submission is the applicant's record, one per owner identity. Empty
// string means "not set" for the nullable artifact/feedback columns.
type Submission struct {
	ID             common.UUID `json:"id"`
	OwnerID        common.UUID `json:"owner_id"`
	FullName       string      `json:"full_name"`
	Phone          string      `json:"phone"`
	Location       string      `json:"location"`
	Email          string      `json:"email"`
	Hobbies        string      `json:"hobbies"`
	ProfilePicture string      `json:"profile_picture,omitempty"`
	SourceCode     string      `json:"source_code,omitempty"`
	Status         Status      `json:"status"`
	Feedback       string      `json:"feedback,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OwnerPatch carries the fields an applicant may change. Nil pointers are
// left untouched; the patch is applied whole, last write wins.
type OwnerPatch struct {
	FullName       *string `json:"full_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Location       *string `json:"location,omitempty"`
	Email          *string `json:"email,omitempty"`
	Hobbies        *string `json:"hobbies,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	SourceCode     *string `json:"source_code,omitempty"`
}

// ReviewPatch carries the fields a reviewer may change.
type ReviewPatch struct {
	Status   *Status `json:"status,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

// Event is the {old, new} pair emitted on every repository mutation,
// including ones where neither status nor feedback changed. Old is nil for
// creation. Consumers diff Old against New themselves.
type Event struct {
	Old *Submission `json:"old"`
	New *Submission `json:"new"`
}

// StatusChanged reports a status difference, treating creation as entry
// into the new record's status.
func (e Event) StatusChanged() bool {
	if e.Old == nil {
		return e.New != nil && e.New.Status != StatusPending
	}
	return e.New != nil && e.Old.Status != e.New.Status
}

func (e Event) FeedbackChanged() bool {
	if e.Old == nil {
		return e.New != nil && e.New.Feedback != ""
	}
	return e.New != nil && e.Old.Feedback != e.New.Feedback
}
