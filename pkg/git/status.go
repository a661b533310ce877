package git

import (
	"errors"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
)

// Status returns the commit at HEAD and, unless HEAD is detached, the name
// of the checked out branch.
func (r *Repository) Status() (proto.RepositoryStatus, error) {
	ref, err := r.Head()
	if err != nil {
		return proto.RepositoryStatus{}, proto.Internal("read HEAD", err)
	}

	c, err := r.CommitObject(ref.Hash())
	if err != nil {
		return proto.RepositoryStatus{}, proto.Internal("read HEAD commit", err)
	}

	st := proto.RepositoryStatus{Head: newCommit(c)}
	branch, err := r.currentBranch()
	if err != nil {
		return proto.RepositoryStatus{}, err
	}
	if branch != "" {
		name := branch.Short()
		st.CurrentBranch = &name
	}

	return st, nil
}

// currentBranch returns the branch HEAD points to, or an empty name when
// HEAD is detached.
func (r *Repository) currentBranch() (plumbing.ReferenceName, error) {
	head, err := r.Storer.Reference(plumbing.HEAD)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", proto.Internal("read HEAD", err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target(), nil
	}
	return "", nil
}
