package git

import (
	"errors"
	"sort"
	"strings"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/gobwas/glob"
)

// maxPeelDepth bounds how many annotated tags are followed to reach a
// commit.
const maxPeelDepth = 8

// ValidateRefName checks a tag or branch short name against the rules git
// applies to reference names.
func ValidateRefName(name string) error {
	switch {
	case name == "":
		return proto.BadRequestf("empty reference name")
	case name == "@", name == HEAD:
		return proto.BadRequestf("invalid reference name %q", name)
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"),
		strings.HasSuffix(name, "."), strings.HasSuffix(name, ".lock"),
		strings.HasPrefix(name, "-"):
		return proto.BadRequestf("invalid reference name %q", name)
	case strings.Contains(name, ".."), strings.Contains(name, "//"),
		strings.Contains(name, "@{"):
		return proto.BadRequestf("invalid reference name %q", name)
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f || strings.ContainsRune(" ~^:?*[\\", c) {
			return proto.BadRequestf("invalid reference name %q: forbidden character %q", name, c)
		}
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return proto.BadRequestf("invalid reference name %q: component starts with a dot", name)
		}
	}
	return nil
}

// CreateTag creates a lightweight tag pointing at the commit rev resolves
// to. An existing tag is only replaced when force is set.
func (r *Repository) CreateTag(name, rev string, force bool) (proto.Tag, error) {
	c, err := r.createRef(plumbing.NewTagReferenceName(name), name, rev, force)
	if err != nil {
		return proto.Tag{}, err
	}
	return proto.Tag{Name: name, Commit: c}, nil
}

// CreateBranch creates a branch pointing at the commit rev resolves to. An
// existing branch is only replaced when force is set, and the branch HEAD
// points to is never replaced.
func (r *Repository) CreateBranch(name, rev string, force bool) (proto.Branch, error) {
	c, err := r.createRef(plumbing.NewBranchReferenceName(name), name, rev, force)
	if err != nil {
		return proto.Branch{}, err
	}
	return proto.Branch{Name: name, Head: c}, nil
}

func (r *Repository) createRef(refName plumbing.ReferenceName, name, rev string, force bool) (proto.Commit, error) {
	if err := ValidateRefName(name); err != nil {
		return proto.Commit{}, err
	}

	target, err := r.commitObject(rev)
	if err != nil {
		return proto.Commit{}, err
	}

	_, err = r.Storer.Reference(refName)
	switch {
	case err == nil && !force:
		return proto.Commit{}, proto.BadRequestf("reference %q already exists", refName.Short())
	case err == nil && refName.IsBranch():
		current, err := r.currentBranch()
		if err != nil {
			return proto.Commit{}, err
		}
		if current == refName {
			return proto.Commit{}, proto.BadRequestf("cannot force update branch %q checked out at HEAD", name)
		}
	case err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound):
		return proto.Commit{}, proto.Internal("read reference", err)
	}

	if err := r.Storer.SetReference(plumbing.NewHashReference(refName, target.Hash)); err != nil {
		return proto.Commit{}, proto.Internal("write reference", err)
	}

	return newCommit(target), nil
}

// ListTags returns the tags whose names match filter, sorted by name.
func (r *Repository) ListTags(filter string) ([]proto.Tag, error) {
	match, err := newNameMatcher(filter)
	if err != nil {
		return nil, err
	}

	iter, err := r.Tags()
	if err != nil {
		return nil, proto.Internal("list tags", err)
	}
	defer iter.Close()

	tags := make([]proto.Tag, 0)
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !match(name) {
			return nil
		}
		c, err := r.peel(ref.Hash())
		if err != nil {
			r.logger.Warn("skipping tag", "tag", name, "err", err)
			return nil
		}
		tags = append(tags, proto.Tag{Name: name, Commit: newCommit(c)})
		return nil
	}); err != nil {
		return nil, proto.Internal("list tags", err)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// ListBranches returns the local branches whose names match filter, sorted
// by name.
func (r *Repository) ListBranches(filter string) ([]proto.Branch, error) {
	match, err := newNameMatcher(filter)
	if err != nil {
		return nil, err
	}

	iter, err := r.Branches()
	if err != nil {
		return nil, proto.Internal("list branches", err)
	}
	defer iter.Close()

	branches := make([]proto.Branch, 0)
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !match(name) {
			return nil
		}
		c, err := r.peel(ref.Hash())
		if err != nil {
			r.logger.Warn("skipping branch", "branch", name, "err", err)
			return nil
		}
		branches = append(branches, proto.Branch{Name: name, Head: newCommit(c)})
		return nil
	}); err != nil {
		return nil, proto.Internal("list branches", err)
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// peel follows annotated tags until it reaches a commit.
func (r *Repository) peel(h plumbing.Hash) (*object.Commit, error) {
	for i := 0; i < maxPeelDepth; i++ {
		c, err := r.CommitObject(h)
		if err == nil {
			return c, nil
		}
		tag, err := r.TagObject(h)
		if err != nil {
			return nil, err
		}
		h = tag.Target
	}
	return nil, errors.New("annotated tag chain too deep")
}

// newNameMatcher returns a matcher for tag and branch names. A filter with
// glob meta characters is compiled as a glob, anything else matches as a
// substring.
func newNameMatcher(filter string) (func(string) bool, error) {
	if filter == "" {
		return func(string) bool { return true }, nil
	}
	if strings.ContainsAny(filter, "*?[{") {
		g, err := glob.Compile(filter)
		if err != nil {
			return nil, proto.BadRequestf("invalid filter %q: %v", filter, err)
		}
		return g.Match, nil
	}
	return func(name string) bool {
		return strings.Contains(name, filter)
	}, nil
}
