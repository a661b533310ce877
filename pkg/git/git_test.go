package git

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/debugflow/revd/pkg/test"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/matryer/is"
)

func open(t *testing.T, r *test.Repository) *Repository {
	t.Helper()
	repo, err := Open(r.Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func ids(commits []proto.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.ID)
	}
	return out
}

func TestOpenNotARepository(t *testing.T) {
	is := is.New(t)
	_, err := Open(t.TempDir())
	is.True(errors.Is(err, ErrNotAGitRepository))
}

func TestCommitSnapshot(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	c, err := r.Commit(hs[1].String())
	is.NoErr(err)
	is.Equal(c.ID, hs[1].String())
	is.Equal(c.Summary, "second commit")
	is.Equal(c.Body, "with a body")
	is.Equal(c.Author.Name, "Alice")
	is.Equal(c.Committer.Email, "alice@example.com")
	is.Equal(c.Time, test.Epoch.Add(2*time.Hour))
}

func TestResolve(t *testing.T) {
	f, hs := test.Linear(t)
	r := open(t, f)

	cases := []struct {
		name string
		rev  string
		want plumbing.Hash
		err  error
	}{
		{name: "head", rev: "HEAD", want: hs[2]},
		{name: "full hash", rev: hs[0].String(), want: hs[0]},
		{name: "short hash", rev: hs[1].String()[:7], want: hs[1]},
		{name: "branch", rev: "master", want: hs[2]},
		{name: "ancestor", rev: "HEAD~2", want: hs[0]},
		{name: "empty", rev: "", err: proto.ErrBadRequest},
		{name: "whitespace", rev: "bad rev", err: proto.ErrBadRequest},
		{name: "range", rev: "HEAD~1..HEAD", err: proto.ErrBadRequest},
		{name: "peel commit", rev: "HEAD^{commit}", want: hs[2]},
		{name: "peel", rev: "master^{}", want: hs[2]},
		{name: "bad ancestor", rev: "HEAD~x", err: proto.ErrBadRequest},
		{name: "bad parent", rev: "HEAD^3", err: proto.ErrBadRequest},
		{name: "path", rev: "HEAD:README.md", err: proto.ErrBadRequest},
		{name: "peel tree", rev: "HEAD^{tree}", err: proto.ErrBadRequest},
		{name: "reflog", rev: "HEAD@{1}", err: proto.ErrBadRequest},
		{name: "unterminated peel", rev: "HEAD^{commit", err: proto.ErrBadRequest},
		{name: "unknown", rev: "nope", err: proto.ErrNotFound},
		{name: "past root", rev: "HEAD~10", err: proto.ErrNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			h, err := r.Resolve(c.rev)
			if c.err != nil {
				is.True(errors.Is(err, c.err))
				return
			}
			is.NoErr(err)
			is.Equal(h, c.want)
		})
	}
}

func TestCommitsRange(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	all, err := r.Commits(proto.RevisionRange{}, "")
	is.NoErr(err)
	is.Equal(ids(all), []string{hs[2].String(), hs[1].String(), hs[0].String()})

	since, err := r.Commits(proto.NewRevisionRange(hs[0].String(), ""), "")
	is.NoErr(err)
	is.Equal(ids(since), []string{hs[2].String(), hs[1].String()})

	upto, err := r.Commits(proto.NewRevisionRange("", hs[1].String()), "")
	is.NoErr(err)
	is.Equal(ids(upto), []string{hs[1].String(), hs[0].String()})

	// The head of a range is the commit the revision resolves to.
	head, err := r.Commit(hs[1].String())
	is.NoErr(err)
	is.Equal(upto[0].ID, head.ID)

	empty, err := r.Commits(proto.NewRevisionRange("HEAD", "HEAD"), "")
	is.NoErr(err)
	is.Equal(len(empty), 0)
}

func TestCommitsFilter(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	got, err := r.Commits(proto.RevisionRange{}, "second")
	is.NoErr(err)
	is.Equal(ids(got), []string{hs[1].String()})

	got, err = r.Commits(proto.RevisionRange{}, "Second")
	is.NoErr(err)
	is.Equal(len(got), 0) // case-sensitive

	got, err = r.Commits(proto.RevisionRange{}, hs[0].String()[:10])
	is.NoErr(err)
	is.Equal(ids(got), []string{hs[0].String()})

	// body text does not match
	got, err = r.Commits(proto.RevisionRange{}, "body")
	is.NoErr(err)
	is.Equal(len(got), 0)
}

func TestCommitsBadRange(t *testing.T) {
	is := is.New(t)
	f, _ := test.Linear(t)
	r := open(t, f)

	_, err := r.Commits(proto.NewRevisionRange("missing", ""), "")
	is.True(errors.Is(err, proto.ErrNotFound))

	_, err = r.Commits(proto.NewRevisionRange("", "bad rev"), "")
	is.True(errors.Is(err, proto.ErrBadRequest))
}

func TestWalkIterator(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	iter, err := r.Walk(proto.RevisionRange{}, "")
	is.NoErr(err)
	c, err := iter.Next()
	is.NoErr(err)
	is.Equal(c.ID, hs[2].String())
	iter.Close()

	// closed iterators are exhausted
	_, err = iter.Next()
	is.Equal(err, io.EOF)
}

func TestCommitsMerge(t *testing.T) {
	is := is.New(t)
	f := test.NewRepository(t)
	root := f.Commit("root", map[string][]byte{"a": []byte("a\n")})
	side := f.Commit("side", map[string][]byte{"b": []byte("b\n")})

	wt, err := f.Worktree()
	is.NoErr(err)
	is.NoErr(wt.Checkout(&gogit.CheckoutOptions{Hash: root}))
	trunk := f.Commit("trunk", map[string][]byte{"c": []byte("c\n")})
	merge := f.CommitWith("merge", nil, &gogit.CommitOptions{
		Parents:           []plumbing.Hash{trunk, side},
		AllowEmptyCommits: true,
	})

	r := open(t, f)
	got, err := r.Commits(proto.NewRevisionRange(trunk.String(), merge.String()), "")
	is.NoErr(err)
	is.Equal(ids(got), []string{merge.String(), side.String()})
}
