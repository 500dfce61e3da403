package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/user"
	"github.com/Charbel-5/moondev-coding-challenge/internal/storage"
)

const (
	maxProfilePictureSize = 5 << 20
	maxSourceCodeSize     = 50 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedArchiveTypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
}

// ObjectStore is the slice of the artifact store the broker needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (string, error)
	SignURL(ctx context.Context, bucket, objectPath string, ttl time.Duration) (string, error)
	Download(ctx context.Context, bucket, objectPath string) (io.ReadCloser, string, error)
	List(ctx context.Context, bucket, prefix string) ([]storage.Entry, error)
}

// ArtifactService is the access broker: every artifact read goes through
// it, so the long-lived storage credential never reaches a browser. It is
// stateless and cacheless; each request re-derives the capability and
// natural expiry stands in for revocation.
type ArtifactService struct {
	store ObjectStore
	repo  submission.Repository
	ttl   time.Duration
	now   func() time.Time
}

func NewArtifactService(store ObjectStore, repo submission.Repository, ttl time.Duration) *ArtifactService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ArtifactService{store: store, repo: repo, ttl: ttl, now: time.Now}
}

// SignedURL mints a time-boxed capability for one object, after checking
// the caller may read it (reviewers read anything; applicants only objects
// referenced by their own submission).
func (s *ArtifactService) SignedURL(ctx context.Context, actor user.Identity, bucket, objectPath string) (string, error) {
	if err := s.authorize(ctx, actor, bucket, objectPath); err != nil {
		return "", err
	}
	return s.store.SignURL(ctx, bucket, objectPath, s.ttl)
}

// Download relays the object server-side for forced-download semantics.
// The caller must close the reader.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

func (s *ArtifactService) Stream(ctx context.Context, actor user.Identity, bucket, objectPath string) (*Download, error) {
	if err := s.authorize(ctx, actor, bucket, objectPath); err != nil {
		return nil, err
	}
	body, contentType, err := s.store.Download(ctx, bucket, objectPath)
	if err != nil {
		return nil, err
	}
	ref := storage.Ref{Bucket: bucket, Path: objectPath}
	return &Download{Body: body, ContentType: contentType, Filename: ref.Filename()}, nil
}

type ArtifactKind string

const (
	ArtifactProfilePicture ArtifactKind = "profile-picture"
	ArtifactSourceCode     ArtifactKind = "source-code"
)

// UploadArtifact stores a new object under the owner's prefix and returns
// the reference to record on the submission. Replaced objects are kept;
// only the reference moves.
func (s *ArtifactService) UploadArtifact(ctx context.Context, actor user.Identity, kind ArtifactKind, filename, contentType string, size int64, body io.Reader) (string, error) {
	if actor.Role != user.RoleApplicant {
		return "", common.NewError(common.CodeForbidden, "only applicants upload artifacts", nil)
	}

	var bucket string
	switch kind {
	case ArtifactProfilePicture:
		bucket = storage.BucketProfilePictures
		if !allowedImageTypes[contentType] {
			return "", common.NewValidationError("invalid file type", map[string]string{"file": "only image files are allowed"})
		}
		if size > maxProfilePictureSize {
			return "", common.NewValidationError("file too large", map[string]string{"file": "profile pictures are limited to 5MB"})
		}
	case ArtifactSourceCode:
		bucket = storage.BucketSourceCode
		if !allowedArchiveTypes[contentType] {
			return "", common.NewValidationError("invalid file type", map[string]string{"file": "only ZIP files are allowed"})
		}
		if size > maxSourceCodeSize {
			return "", common.NewValidationError("file too large", map[string]string{"file": "source archives are limited to 50MB"})
		}
	default:
		return "", common.NewValidationError("invalid artifact kind", map[string]string{"kind": "must be profile-picture or source-code"})
	}

	objectPath := fmt.Sprintf("%s/%d-%s", actor.UserID, s.now().UnixMilli(), sanitizeFilename(filename))
	return s.store.Upload(ctx, bucket, objectPath, body, contentType)
}

// ListUploads returns the caller's previously stored objects of one kind,
// so a re-submit can reuse an earlier upload instead of pushing it again.
func (s *ArtifactService) ListUploads(ctx context.Context, actor user.Identity, kind ArtifactKind) ([]storage.Entry, error) {
	if actor.Role != user.RoleApplicant {
		return nil, common.NewError(common.CodeForbidden, "only applicants list their uploads", nil)
	}
	var bucket string
	switch kind {
	case ArtifactProfilePicture:
		bucket = storage.BucketProfilePictures
	case ArtifactSourceCode:
		bucket = storage.BucketSourceCode
	default:
		return nil, common.NewValidationError("invalid artifact kind", map[string]string{"kind": "must be profile-picture or source-code"})
	}
	return s.store.List(ctx, bucket, actor.UserID.String())
}

// authorize enforces the ownership constraint at the broker layer itself:
// the bucket/path pair must come from the caller's own stored references
// unless the caller is a reviewer. Without this the endpoint is an open
// proxy into the store.
func (s *ArtifactService) authorize(ctx context.Context, actor user.Identity, bucket, objectPath string) error {
	if actor.IsReviewer() {
		return nil
	}
	sub, err := s.repo.GetByOwner(ctx, actor.UserID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return common.NewError(common.CodeForbidden, "no submission on record for caller", nil)
		}
		return err
	}
	for _, raw := range []string{sub.ProfilePicture, sub.SourceCode} {
		if raw == "" {
			continue
		}
		ref, err := storage.ResolveReference(raw)
		if err != nil {
			// A stored reference that no longer parses is a data
			// integrity problem on that field, not a reason to deny
			// the other one.
			continue
		}
		if ref.Bucket == bucket && ref.Path == objectPath {
			return nil
		}
	}
	return common.NewError(common.CodeForbidden, "artifact does not belong to caller", nil)
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" {
		return "upload"
	}
	return strings.ReplaceAll(base, " ", "_")
}
