package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/debugflow/revd/pkg/test"
	"github.com/matryer/is"
)

func TestDiffsText(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	diffs, err := r.Diffs(proto.NewRevisionRange(hs[0].String(), hs[1].String()))
	is.NoErr(err)
	is.Equal(len(diffs), 1)

	d := diffs[0]
	is.Equal(d.Kind, proto.DiffKindText)
	is.Equal(*d.Old.Path, "README.md")
	is.Equal(*d.New.Path, "README.md")
	is.Equal(*d.Old.Content, "hello\n")
	is.Equal(*d.New.Content, "hello\nworld\n")
	is.True(strings.Contains(d.Patch, "+world"))
	is.True(strings.Contains(d.Patch, "README.md"))
}

func TestDiffsFromEmptyTree(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	diffs, err := r.Diffs(proto.NewRevisionRange("", hs[0].String()))
	is.NoErr(err)
	is.Equal(len(diffs), 1)

	d := diffs[0]
	is.Equal(d.Kind, proto.DiffKindText)
	is.Equal(d.Old.Path, nil)
	is.Equal(d.Old.Content, nil)
	is.Equal(*d.New.Path, "README.md")
	is.Equal(*d.New.Content, "hello\n")
}

func TestDiffsDefaultHead(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	r := open(t, f)

	diffs, err := r.Diffs(proto.NewRevisionRange(hs[1].String(), ""))
	is.NoErr(err)
	is.Equal(len(diffs), 1)
	is.Equal(*diffs[0].New.Path, "main.go")
}

func TestDiffsDeletion(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	last := f.Commit("remove main", map[string][]byte{"main.go": nil})
	r := open(t, f)

	diffs, err := r.Diffs(proto.NewRevisionRange(hs[2].String(), last.String()))
	is.NoErr(err)
	is.Equal(len(diffs), 1)
	is.Equal(*diffs[0].Old.Path, "main.go")
	is.Equal(diffs[0].New.Path, nil)
	is.Equal(diffs[0].New.Content, nil)
	is.True(strings.Contains(diffs[0].Patch, "-package main"))
}

func TestDiffsBinary(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)
	bin := f.Commit("add image", map[string][]byte{
		"image.png": {0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02, 0x00},
		"NOTES.txt": []byte("notes\n"),
		"data.bin":  []byte("ab\x00cd"),
	})
	r := open(t, f)

	diffs, err := r.Diffs(proto.NewRevisionRange(hs[2].String(), bin.String()))
	is.NoErr(err)
	is.Equal(len(diffs), 3)

	byPath := make(map[string]proto.Diff)
	for _, d := range diffs {
		byPath[*d.New.Path] = d
	}

	img := byPath["image.png"]
	is.Equal(img.Kind, proto.DiffKindBinary)
	is.Equal(img.Patch, "")
	is.Equal(img.New.Content, nil) // not UTF-8

	data := byPath["data.bin"]
	is.Equal(data.Kind, proto.DiffKindBinary)
	is.Equal(data.Patch, "")
	is.True(data.New.Content != nil)
	is.Equal(*data.New.Content, "ab\x00cd")

	notes := byPath["NOTES.txt"]
	is.Equal(notes.Kind, proto.DiffKindText)
	is.True(notes.Patch != "")
}

func TestDiffsMissingBlob(t *testing.T) {
	is := is.New(t)
	f, hs := test.Linear(t)

	c, err := f.CommitObject(hs[1])
	is.NoErr(err)
	readme, err := c.File("README.md")
	is.NoErr(err)

	// drop the loose object of the modified README
	h := readme.Hash.String()
	is.NoErr(os.Remove(filepath.Join(f.Path, ".git", "objects", h[:2], h[2:])))

	r := open(t, f)
	diffs, err := r.Diffs(proto.NewRevisionRange(hs[0].String(), hs[1].String()))
	is.NoErr(err)
	is.Equal(len(diffs), 1)
	is.Equal(*diffs[0].New.Path, "README.md")
	is.Equal(diffs[0].Kind, proto.DiffKindText)
	is.Equal(diffs[0].Patch, "")
	is.Equal(diffs[0].New.Content, nil)
	is.True(diffs[0].Old.Content != nil)
	is.Equal(*diffs[0].Old.Content, "hello\n")
}

func TestDiffsUnknownRevision(t *testing.T) {
	is := is.New(t)
	f, _ := test.Linear(t)
	r := open(t, f)

	_, err := r.Diffs(proto.NewRevisionRange("", "missing"))
	is.True(errors.Is(err, proto.ErrNotFound))
}
