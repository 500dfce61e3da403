package submission

import (
	"context"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

// Repository is the durable store for submissions. Updates are whole-patch
// and last-write-wins: no version token guards concurrent writes, and two
// interleaved reviewer patches resolve to whichever committed second. That
// is the documented concurrency contract, not an oversight.
type Repository interface {
	Create(ctx context.Context, sub Submission) (*Submission, error)
	GetByID(ctx context.Context, id common.UUID) (*Submission, error)
	GetByOwner(ctx context.Context, ownerID common.UUID) (*Submission, error)
	List(ctx context.Context) ([]Submission, error)
	UpdateOwnerFields(ctx context.Context, id common.UUID, patch OwnerPatch) (*Submission, error)
	UpdateReview(ctx context.Context, id common.UUID, patch ReviewPatch) (*Submission, error)
}
