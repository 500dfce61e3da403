package storage

import (
	"regexp"
	"strings"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

// Ref is a resolved artifact location inside the store.
type Ref struct {
	Bucket string
	Path   string
}

// Stored references look like
// https://host/storage/v1/object/public/<bucket>/<path>; everything after
// the marker is bucket then object path.
var referencePattern = regexp.MustCompile(`/storage/v1/object/(?:public|auth)/([^/]+)/(.+)$`)

// ResolveReference extracts {bucket, path} from a stored artifact value. A
// missing marker is a data-integrity condition and comes back as a parse
// error, never silently.
func ResolveReference(raw string) (Ref, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Ref{}, common.NewError(common.CodeParse, "empty artifact reference", nil)
	}
	matches := referencePattern.FindStringSubmatch(trimmed)
	if len(matches) < 3 {
		return Ref{}, common.NewError(common.CodeParse, "artifact reference format not recognized", nil)
	}
	return Ref{Bucket: matches[1], Path: matches[2]}, nil
}

// Filename returns the last path segment, used for download dispositions.
func (r Ref) Filename() string {
	segments := strings.Split(r.Path, "/")
	name := segments[len(segments)-1]
	if name == "" {
		return "download"
	}
	return name
}
