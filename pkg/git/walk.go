package git

import (
	"errors"
	"io"
	"strings"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CommitIter is a forward-only sequence of commits, newest first. It cannot
// be restarted; walk the range again to get a fresh iterator.
type CommitIter struct {
	iter   object.CommitIter
	filter string
}

// Walk returns the commits reachable from the head of rng but not from its
// base. A missing head defaults to HEAD and a missing base walks to the
// root. When filter is not empty only commits whose id or summary contain
// it are returned. The match is case-sensitive.
func (r *Repository) Walk(rng proto.RevisionRange, filter string) (*CommitIter, error) {
	head, err := r.commitObject(headRevision(rng))
	if err != nil {
		return nil, err
	}

	var hidden map[plumbing.Hash]bool
	if rng.Base != nil {
		base, err := r.commitObject(*rng.Base)
		if err != nil {
			return nil, err
		}
		hidden, err = reachable(base)
		if err != nil {
			return nil, proto.Internal("walk base", err)
		}
	}

	return &CommitIter{
		iter:   object.NewCommitIterCTime(head, hidden, nil),
		filter: filter,
	}, nil
}

// Commits walks rng and collects the result.
func (r *Repository) Commits(rng proto.RevisionRange, filter string) ([]proto.Commit, error) {
	iter, err := r.Walk(rng, filter)
	if err != nil {
		return nil, err
	}
	commits := make([]proto.Commit, 0)
	if err := iter.ForEach(func(c proto.Commit) error {
		commits = append(commits, c)
		return nil
	}); err != nil {
		return nil, err
	}
	return commits, nil
}

// Next returns the next matching commit, or io.EOF once the walk is done.
func (it *CommitIter) Next() (proto.Commit, error) {
	if it.iter == nil {
		return proto.Commit{}, io.EOF
	}
	for {
		c, err := it.iter.Next()
		if err != nil {
			it.Close()
			if err == io.EOF {
				return proto.Commit{}, io.EOF
			}
			return proto.Commit{}, proto.Internal("walk commits", err)
		}
		commit := newCommit(c)
		if it.matches(commit) {
			return commit, nil
		}
	}
}

// ForEach calls fn for every remaining commit. Returning storer.ErrStop
// from fn ends the walk without an error.
func (it *CommitIter) ForEach(fn func(proto.Commit) error) error {
	defer it.Close()
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Close releases the underlying iterator.
func (it *CommitIter) Close() {
	if it.iter != nil {
		it.iter.Close()
		it.iter = nil
	}
}

func (it *CommitIter) matches(c proto.Commit) bool {
	if it.filter == "" {
		return true
	}
	return strings.Contains(c.ID, it.filter) || strings.Contains(c.Summary, it.filter)
}

// reachable returns the set of commits reachable from c, c included.
func reachable(c *object.Commit) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(c, nil, nil)
	defer iter.Close()
	err := iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	return seen, err
}
