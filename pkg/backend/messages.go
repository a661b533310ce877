package backend

import (
	"github.com/debugflow/revd/pkg/git"
	"github.com/debugflow/revd/pkg/proto"
)

// GetRevision returns the commit a revision resolves to.
type GetRevision struct {
	Revision string
}

// Name implements actor.Message.
func (GetRevision) Name() string { return "get_revision" }

// Handle implements actor.Message.
func (m GetRevision) Handle(r *git.Repository) (proto.Commit, error) {
	return r.Commit(m.Revision)
}

// CheckoutRevision moves the working tree to a revision.
type CheckoutRevision struct {
	Revision string
}

// Name implements actor.Message.
func (CheckoutRevision) Name() string { return "checkout_revision" }

// Handle implements actor.Message.
func (m CheckoutRevision) Handle(r *git.Repository) (proto.Commit, error) {
	return r.Checkout(m.Revision)
}

// ListCommits lists the commits of a range, newest first.
type ListCommits struct {
	Range  proto.RevisionRange
	Filter string
}

// Name implements actor.Message.
func (ListCommits) Name() string { return "list_commits" }

// Handle implements actor.Message.
func (m ListCommits) Handle(r *git.Repository) ([]proto.Commit, error) {
	return r.Commits(m.Range, m.Filter)
}

// ListDiffs lists the file changes of a range.
type ListDiffs struct {
	Range proto.RevisionRange
}

// Name implements actor.Message.
func (ListDiffs) Name() string { return "list_diffs" }

// Handle implements actor.Message.
func (m ListDiffs) Handle(r *git.Repository) ([]proto.Diff, error) {
	return r.Diffs(m.Range)
}

// ListTags lists tags.
type ListTags struct {
	Filter string
}

// Name implements actor.Message.
func (ListTags) Name() string { return "list_tags" }

// Handle implements actor.Message.
func (m ListTags) Handle(r *git.Repository) ([]proto.Tag, error) {
	return r.ListTags(m.Filter)
}

// CreateTag creates a lightweight tag.
type CreateTag struct {
	Tag      string
	Revision string
	Force    bool
}

// Name implements actor.Message.
func (CreateTag) Name() string { return "create_tag" }

// Handle implements actor.Message.
func (m CreateTag) Handle(r *git.Repository) (proto.Tag, error) {
	return r.CreateTag(m.Tag, m.Revision, m.Force)
}

// ListBranches lists local branches.
type ListBranches struct {
	Filter string
}

// Name implements actor.Message.
func (ListBranches) Name() string { return "list_branches" }

// Handle implements actor.Message.
func (m ListBranches) Handle(r *git.Repository) ([]proto.Branch, error) {
	return r.ListBranches(m.Filter)
}

// CreateBranch creates a branch.
type CreateBranch struct {
	Branch   string
	Revision string
	Force    bool
}

// Name implements actor.Message.
func (CreateBranch) Name() string { return "create_branch" }

// Handle implements actor.Message.
func (m CreateBranch) Handle(r *git.Repository) (proto.Branch, error) {
	return r.CreateBranch(m.Branch, m.Revision, m.Force)
}

// GetRepositoryStatus returns HEAD and the checked out branch.
type GetRepositoryStatus struct{}

// Name implements actor.Message.
func (GetRepositoryStatus) Name() string { return "get_repository_status" }

// Handle implements actor.Message.
func (GetRepositoryStatus) Handle(r *git.Repository) (proto.RepositoryStatus, error) {
	return r.Status()
}

// RepositoryStats are counters published by the repo-stats job.
type RepositoryStats struct {
	Tags     int
	Branches int
	Detached bool
}

// GetRepositoryStats counts tags and branches.
type GetRepositoryStats struct{}

// Name implements actor.Message.
func (GetRepositoryStats) Name() string { return "get_repository_stats" }

// Handle implements actor.Message.
func (GetRepositoryStats) Handle(r *git.Repository) (RepositoryStats, error) {
	tags, err := r.ListTags("")
	if err != nil {
		return RepositoryStats{}, err
	}
	branches, err := r.ListBranches("")
	if err != nil {
		return RepositoryStats{}, err
	}
	st, err := r.Status()
	if err != nil {
		return RepositoryStats{}, err
	}
	return RepositoryStats{
		Tags:     len(tags),
		Branches: len(branches),
		Detached: st.CurrentBranch == nil,
	}, nil
}
