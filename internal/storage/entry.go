package storage

type EntryKind string

const (
	EntryFolder EntryKind = "folder"
	EntryFile   EntryKind = "file"
)

// Entry is one row of a bucket listing. Folder entries carry only a name;
// file entries carry id and object metadata.
type Entry struct {
	Kind        EntryKind `json:"kind"`
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
}
