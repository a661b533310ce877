package git

import (
	"errors"
	"strings"

	"github.com/debugflow/revd/pkg/proto"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Checkout moves the working tree to rev. A local branch name checks the
// branch out, anything else detaches HEAD at the commit rev resolves to.
func (r *Repository) Checkout(rev string) (proto.Commit, error) {
	if err := ValidateRevision(rev); err != nil {
		return proto.Commit{}, err
	}
	if r.IsBare {
		return proto.Commit{}, proto.BadRequestf("cannot checkout %q in a bare repository", rev)
	}

	wt, err := r.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return proto.Commit{}, proto.BadRequestf("cannot checkout %q in a bare repository", rev)
		}
		return proto.Commit{}, proto.Internal("open worktree", err)
	}

	// go-git moves HEAD before it notices local changes, check first.
	dirty, err := hasLocalChanges(wt)
	if err != nil {
		return proto.Commit{}, proto.Internal("worktree status", err)
	}
	if dirty {
		return proto.Commit{}, proto.BadRequestf("cannot checkout %q: worktree has local changes", rev)
	}

	var (
		opts   gogit.CheckoutOptions
		target *object.Commit
	)
	branch := plumbing.NewBranchReferenceName(rev)
	if strings.HasPrefix(rev, "refs/heads/") {
		branch = plumbing.ReferenceName(rev)
	}
	if ref, err := r.Storer.Reference(branch); err == nil && ref.Type() == plumbing.HashReference {
		target, err = r.peel(ref.Hash())
		if err != nil {
			return proto.Commit{}, proto.Internal("read branch head", err)
		}
		opts.Branch = branch
	} else {
		target, err = r.commitObject(rev)
		if err != nil {
			return proto.Commit{}, err
		}
		opts.Hash = target.Hash
	}

	if err := wt.Checkout(&opts); err != nil {
		if errors.Is(err, gogit.ErrUnstagedChanges) {
			return proto.Commit{}, proto.BadRequestf("cannot checkout %q: worktree has local changes", rev)
		}
		return proto.Commit{}, proto.Internal("checkout", err)
	}

	return newCommit(target), nil
}

// hasLocalChanges reports whether any tracked file differs from HEAD.
// Untracked files are ignored.
func hasLocalChanges(wt *gogit.Worktree) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, fs := range status {
		if fs.Worktree == gogit.Untracked && fs.Staging == gogit.Untracked {
			continue
		}
		if fs.Worktree != gogit.Unmodified || fs.Staging != gogit.Unmodified {
			return true, nil
		}
	}
	return false, nil
}
