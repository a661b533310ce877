package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/debugflow/revd/pkg/test"
	gogit "github.com/go-git/go-git/v5"
	"github.com/matryer/is"
)

func TestStatusOnBranch(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	st, err := r.Status()
	is.NoErr(err)
	is.Equal(st.Head.ID, hs[2].String())
	is.Equal(*st.CurrentBranch, "master")
}

func TestCheckoutBranch(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	_, err := r.CreateBranch("feature", hs[1].String(), false)
	is.NoErr(err)

	c, err := r.Checkout("feature")
	is.NoErr(err)
	is.Equal(c.ID, hs[1].String())

	st, err := r.Status()
	is.NoErr(err)
	is.Equal(st.Head.ID, hs[1].String())
	is.Equal(*st.CurrentBranch, "feature")

	// the worktree follows the checkout
	_, err = os.Stat(filepath.Join(f.Path, "main.go"))
	is.True(os.IsNotExist(err))
}

func TestCheckoutDetached(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	c, err := r.Checkout(hs[0].String())
	is.NoErr(err)
	is.Equal(c.ID, hs[0].String())

	st, err := r.Status()
	is.NoErr(err)
	is.Equal(st.Head.ID, hs[0].String())
	is.Equal(st.CurrentBranch, nil)

	// a detached HEAD does not protect any branch
	_, err = r.CreateBranch("master", hs[1].String(), true)
	is.NoErr(err)
}

func TestCheckoutErrors(t *testing.T) {
	is := is.New(t)
	f, _ := test.Linear(t)
	r := open(t, f)

	_, err := r.Checkout("missing")
	is.True(errors.Is(err, proto.ErrNotFound))

	_, err = r.Checkout("")
	is.True(errors.Is(err, proto.ErrBadRequest))

	is.NoErr(os.WriteFile(filepath.Join(f.Path, "README.md"), []byte("dirty\n"), 0o644))
	_, err = r.Checkout("HEAD~1")
	is.True(errors.Is(err, proto.ErrBadRequest))
}

func TestCheckoutBare(t *testing.T) {
	is := is.New(t)
	path := t.TempDir()
	_, err := gogit.PlainInit(path, true)
	is.NoErr(err)

	r, err := Open(path)
	is.NoErr(err)
	is.True(r.IsBare)

	_, err = r.Checkout("HEAD")
	is.True(errors.Is(err, proto.ErrBadRequest))
}

func TestStatusUnbornHead(t *testing.T) {
	is := is.New(t)
	f := test.NewRepository(t)
	r := open(t, f)

	_, err := r.Status()
	is.True(errors.Is(err, proto.ErrInternal))
}
