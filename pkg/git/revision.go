package git

import (
	"errors"
	"strings"
	"unicode"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// HEAD is the name of the symbolic reference to the current commit.
const HEAD = "HEAD"

// ValidateRevision reports whether rev can be handed to the resolver.
// Ranges are not revisions and are rejected, and so is syntax that names
// something other than a commit (paths, reflog entries, peeling to a tree
// or blob), which the resolver would silently ignore.
func ValidateRevision(rev string) error {
	if strings.TrimSpace(rev) == "" {
		return proto.BadRequestf("empty revision")
	}
	if strings.Contains(rev, "..") {
		return proto.BadRequestf("revision %q: ranges are not supported", rev)
	}
	for _, c := range rev {
		if unicode.IsSpace(c) || unicode.IsControl(c) {
			return proto.BadRequestf("revision %q contains whitespace or control characters", rev)
		}
	}
	if strings.Contains(rev, ":") {
		return proto.BadRequestf("revision %q: path syntax is not supported", rev)
	}
	if strings.Contains(rev, "@{") {
		return proto.BadRequestf("revision %q: reflog syntax is not supported", rev)
	}
	return validatePeel(rev)
}

// validatePeel accepts only the ^{} forms that end at a commit: ^{},
// ^{commit} and the ^{/text} message search.
func validatePeel(rev string) error {
	rest := rev
	for {
		i := strings.Index(rest, "^{")
		if i < 0 {
			return nil
		}
		rest = rest[i+2:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return proto.BadRequestf("revision %q: unterminated ^{", rev)
		}
		switch typ := rest[:end]; {
		case typ == "", typ == "commit", strings.HasPrefix(typ, "/"):
		default:
			return proto.BadRequestf("revision %q: peeling to %q is not supported", rev, typ)
		}
		rest = rest[end+1:]
	}
}

// Resolve resolves a revision to a commit hash. Annotated tags are peeled
// to the commit they point to.
func (r *Repository) Resolve(rev string) (plumbing.Hash, error) {
	if err := ValidateRevision(rev); err != nil {
		return plumbing.ZeroHash, err
	}
	h, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, revisionError(rev, err)
	}
	return *h, nil
}

// Commit returns a snapshot of the commit at the given revision.
func (r *Repository) Commit(rev string) (proto.Commit, error) {
	c, err := r.commitObject(rev)
	if err != nil {
		return proto.Commit{}, err
	}
	return newCommit(c), nil
}

func (r *Repository) commitObject(rev string) (*object.Commit, error) {
	h, err := r.Resolve(rev)
	if err != nil {
		return nil, err
	}
	c, err := r.CommitObject(h)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, proto.NotFoundf("commit %s", h)
		}
		return nil, proto.Internal("read commit", err)
	}
	return c, nil
}

func headRevision(rng proto.RevisionRange) string {
	if rng.Head != nil {
		return *rng.Head
	}
	return HEAD
}
