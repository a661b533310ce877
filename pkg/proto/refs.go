package proto

// Tag is a tag and the commit it points at.
type Tag struct {
	Name   string `json:"tag"`
	Commit Commit `json:"commit"`
}

// Branch is a local branch and its head commit.
type Branch struct {
	Name string `json:"name"`
	Head Commit `json:"head"`
}

// RepositoryStatus describes where HEAD currently is.
type RepositoryStatus struct {
	Head Commit `json:"head"`
	// CurrentBranch is nil when HEAD is detached.
	CurrentBranch *string `json:"currentBranch,omitempty"`
}
