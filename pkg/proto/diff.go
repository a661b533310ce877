package proto

// DiffKind is the kind of a file diff.
type DiffKind string

const (
	// DiffKindText is a diff with a textual line-level patch.
	DiffKindText DiffKind = "text"
	// DiffKindBinary is a diff over binary content; it carries no patch.
	DiffKindBinary DiffKind = "binary"
)

// DiffFile is one side of a file diff.
type DiffFile struct {
	// Path is nil when the side does not exist, e.g. the old side of an
	// added file.
	Path *string `json:"path,omitempty"`
	// Content is nil for blobs that could not be located and for binary
	// files that are not valid UTF-8.
	Content *string `json:"content,omitempty"`
}

// Diff is a single file-level change between two trees.
type Diff struct {
	Old   DiffFile `json:"old"`
	New   DiffFile `json:"new"`
	Kind  DiffKind `json:"kind"`
	Patch string   `json:"patch"`
}
