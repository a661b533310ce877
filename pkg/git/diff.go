package git

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Diffs returns the file changes between the trees of the base and head of
// rng. A missing head defaults to HEAD and a missing base is the empty
// tree. Changes are returned in the order go-git computes them.
func (r *Repository) Diffs(rng proto.RevisionRange) ([]proto.Diff, error) {
	newTree, err := r.tree(headRevision(rng))
	if err != nil {
		return nil, err
	}

	var oldTree *object.Tree
	if rng.Base != nil {
		oldTree, err = r.tree(*rng.Base)
		if err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTree(oldTree, newTree)
	if err != nil {
		return nil, proto.Internal("diff trees", err)
	}

	diffs := make([]proto.Diff, 0, len(changes))
	for _, change := range changes {
		d, err := r.diff(change)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, d)
	}

	return diffs, nil
}

func (r *Repository) tree(rev string) (*object.Tree, error) {
	c, err := r.commitObject(rev)
	if err != nil {
		return nil, err
	}
	t, err := c.Tree()
	if err != nil {
		return nil, proto.Internal("read tree", err)
	}
	return t, nil
}

// diff builds the record of a single change. A change whose patch cannot
// be built because an object is missing stays textual with an empty patch,
// and each side degrades on its own. Binary changes keep a side's content
// only when it is valid UTF-8.
func (r *Repository) diff(change *object.Change) (proto.Diff, error) {
	d := proto.Diff{
		Old:  proto.DiffFile{Path: entryPath(change.From)},
		New:  proto.DiffFile{Path: entryPath(change.To)},
		Kind: proto.DiffKindText,
	}

	patch, err := change.Patch()
	if err != nil {
		if !errors.Is(err, plumbing.ErrObjectNotFound) {
			return proto.Diff{}, proto.Internal("build patch", err)
		}
		r.logger.Warn("cannot build patch, content object is missing", "path", changePath(change), "err", err)
		d.Old.Content = r.content(change.From)
		d.New.Content = r.content(change.To)
		return d, nil
	}

	fps := patch.FilePatches()
	if len(fps) == 0 || fps[0].IsBinary() {
		d.Kind = proto.DiffKindBinary
		d.Old.Content = textContent(r.content(change.From))
		d.New.Content = textContent(r.content(change.To))
		return d, nil
	}

	var buf bytes.Buffer
	if err := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines).Encode(patch); err != nil {
		return proto.Diff{}, proto.Internal("encode patch", err)
	}

	d.Patch = buf.String()
	d.Old.Content = r.content(change.From)
	d.New.Content = r.content(change.To)

	return d, nil
}

// textContent drops content that is not valid UTF-8.
func textContent(s *string) *string {
	if s == nil || !utf8.ValidString(*s) {
		return nil
	}
	return s
}

// content returns the blob content of a change side. Missing objects are
// logged and reported as absent.
func (r *Repository) content(e object.ChangeEntry) *string {
	if e.Name == "" || e.TreeEntry.Hash.IsZero() {
		return nil
	}

	h := e.TreeEntry.Hash
	if s, ok := r.blobs.Get(h); ok {
		return &s
	}

	blob, err := r.BlobObject(h)
	if err != nil {
		r.logger.Warn("content object not found", "path", e.Name, "blob", h.String(), "err", err)
		return nil
	}

	rd, err := blob.Reader()
	if err != nil {
		r.logger.Warn("cannot read content object", "path", e.Name, "blob", h.String(), "err", err)
		return nil
	}
	defer rd.Close() // nolint: errcheck

	bts, err := io.ReadAll(rd)
	if err != nil {
		r.logger.Warn("cannot read content object", "path", e.Name, "blob", h.String(), "err", err)
		return nil
	}

	s := string(bts)
	r.blobs.Add(h, s)
	return &s
}

func entryPath(e object.ChangeEntry) *string {
	if e.Name == "" {
		return nil
	}
	name := e.Name
	return &name
}

func changePath(change *object.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}
	return change.From.Name
}
