package test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Epoch is the reference time of Repository commits. The n-th commit is
// made n hours after Epoch, so commit order is deterministic.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Repository is a scratch git repository.
type Repository struct {
	*gogit.Repository
	Path string

	tb testing.TB
	n  int
}

// NewRepository initializes an empty repository in a temporary directory.
func NewRepository(tb testing.TB) *Repository {
	tb.Helper()
	path := tb.TempDir()
	repo, err := gogit.PlainInit(path, false)
	if err != nil {
		tb.Fatalf("init repository: %v", err)
	}
	return &Repository{Repository: repo, Path: path, tb: tb}
}

// Linear returns a repository with three commits, root first.
func Linear(tb testing.TB) (*Repository, [3]plumbing.Hash) {
	tb.Helper()
	r := NewRepository(tb)
	var hs [3]plumbing.Hash
	hs[0] = r.Commit("first commit", map[string][]byte{"README.md": []byte("hello\n")})
	hs[1] = r.Commit("second commit\n\nwith a body", map[string][]byte{"README.md": []byte("hello\nworld\n")})
	hs[2] = r.Commit("third commit", map[string][]byte{"main.go": []byte("package main\n")})
	return r, hs
}

// Signature returns the signature of the next commit.
func (r *Repository) Signature() *object.Signature {
	return &object.Signature{
		Name:  "Alice",
		Email: "alice@example.com",
		When:  Epoch.Add(time.Duration(r.n) * time.Hour),
	}
}

// Commit writes files and commits them. A nil content removes the file.
func (r *Repository) Commit(msg string, files map[string][]byte) plumbing.Hash {
	r.tb.Helper()
	return r.CommitWith(msg, files, &gogit.CommitOptions{})
}

// CommitWith is like Commit but takes extra commit options, e.g. parents.
func (r *Repository) CommitWith(msg string, files map[string][]byte, opts *gogit.CommitOptions) plumbing.Hash {
	r.tb.Helper()
	wt, err := r.Worktree()
	if err != nil {
		r.tb.Fatalf("worktree: %v", err)
	}
	for name, content := range files {
		fp := filepath.Join(r.Path, name)
		if content == nil {
			if _, err := wt.Remove(name); err != nil {
				r.tb.Fatalf("remove %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
			r.tb.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(fp, content, 0o644); err != nil { //nolint:gosec
			r.tb.Fatalf("write %s: %v", name, err)
		}
		if _, err := wt.Add(name); err != nil {
			r.tb.Fatalf("add %s: %v", name, err)
		}
	}

	r.n++
	sig := r.Signature()
	opts.Author = sig
	opts.Committer = sig
	h, err := wt.Commit(msg, opts)
	if err != nil {
		r.tb.Fatalf("commit: %v", err)
	}
	return h
}
