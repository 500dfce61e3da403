package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

const submissionColumns = `id, owner_id, full_name, phone, location, email, hobbies, profile_picture, source_code, status, feedback, created_at, updated_at`

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub submission.Submission) (*submission.Submission, error) {
	sub.ID = common.NewUUID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = submission.StatusPending
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO submissions (id, owner_id, full_name, phone, location, email, hobbies, profile_picture, source_code, status, feedback, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, NULLIF($11, ''), $12, $13)`,
		sub.ID, sub.OwnerID, sub.FullName, sub.Phone, sub.Location, sub.Email, sub.Hobbies,
		sub.ProfilePicture, sub.SourceCode, sub.Status, sub.Feedback, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "submission already exists for owner", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create submission", err)
	}
	return &sub, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id common.UUID) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

func (r *SubmissionRepository) GetByOwner(ctx context.Context, ownerID common.UUID) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE owner_id = $1`, ownerID)
	return scanSubmission(row)
}

func (r *SubmissionRepository) List(ctx context.Context) ([]submission.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list submissions", err)
	}
	defer rows.Close()
	var items []submission.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to iterate submissions", err)
	}
	return items, nil
}

// UpdateOwnerFields applies the patch in a single statement so the write is
// as atomic as the store makes one UPDATE. Nil patch fields keep the stored
// value via COALESCE.
func (r *SubmissionRepository) UpdateOwnerFields(ctx context.Context, id common.UUID, patch submission.OwnerPatch) (*submission.Submission, error) {
	updatedAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE submissions SET
			full_name = COALESCE($1, full_name),
			phone = COALESCE($2, phone),
			location = COALESCE($3, location),
			email = COALESCE($4, email),
			hobbies = COALESCE($5, hobbies),
			profile_picture = COALESCE($6, profile_picture),
			source_code = COALESCE($7, source_code),
			updated_at = $8
		WHERE id = $9`,
		patch.FullName, patch.Phone, patch.Location, patch.Email, patch.Hobbies,
		patch.ProfilePicture, patch.SourceCode, updatedAt, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update submission", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *SubmissionRepository) UpdateReview(ctx context.Context, id common.UUID, patch submission.ReviewPatch) (*submission.Submission, error) {
	updatedAt := time.Now().UTC()
	var status *string
	if patch.Status != nil {
		value := string(*patch.Status)
		status = &value
	}
	res, err := r.db.ExecContext(ctx, `UPDATE submissions SET
			status = COALESCE($1, status),
			feedback = COALESCE($2, feedback),
			updated_at = $3
		WHERE id = $4`,
		status, patch.Feedback, updatedAt, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update submission review", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*submission.Submission, error) {
	var sub submission.Submission
	var profilePicture, sourceCode, feedback sql.NullString
	err := row.Scan(&sub.ID, &sub.OwnerID, &sub.FullName, &sub.Phone, &sub.Location, &sub.Email, &sub.Hobbies,
		&profilePicture, &sourceCode, &sub.Status, &feedback, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "submission not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load submission", err)
	}
	sub.ProfilePicture = profilePicture.String
	sub.SourceCode = sourceCode.String
	sub.Feedback = feedback.String
	sub.Status = normalizeStatus(sub.Status)
	return &sub, nil
}

func normalizeStatus(status submission.Status) submission.Status {
	return submission.Status(strings.ToLower(strings.TrimSpace(string(status))))
}

func isUniqueViolation(err error) bool {
	// 23505 is the postgres unique_violation class; matching on text keeps
	// the repository driver-agnostic between pgx and lib/pq.
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key"))
}
