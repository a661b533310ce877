// Package git reads and updates a single repository with go-git.
package git

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBlobCacheSize is the number of blob contents kept in memory when
// no size is configured.
const DefaultBlobCacheSize = 256

// Repository is a wrapper around go-git's Repository with helper methods.
//
// A Repository is not safe for concurrent use.
type Repository struct {
	*gogit.Repository
	Path   string
	IsBare bool

	blobs  *lru.Cache[plumbing.Hash, string]
	logger *log.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for soft failures.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger.WithPrefix("git")
		}
	}
}

// WithBlobCacheSize sets the number of blob contents cached in memory.
func WithBlobCacheSize(size int) Option {
	return func(r *Repository) {
		if size <= 0 {
			size = DefaultBlobCacheSize
		}
		r.blobs, _ = lru.New[plumbing.Hash, string](size)
	}
}

// Open opens a git repository at the given path. The path may point to a
// subdirectory of the working tree.
func Open(path string, opts ...Option) (*Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		repo, err = gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
			DetectDotGit: true,
		})
	}
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotAGitRepository
		}
		return nil, err
	}

	r := &Repository{
		Repository: repo,
		Path:       path,
		logger:     log.Default().WithPrefix("git"),
	}
	if _, err := repo.Worktree(); errors.Is(err, gogit.ErrIsBareRepository) {
		r.IsBare = true
	}

	WithBlobCacheSize(DefaultBlobCacheSize)(r)
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Close releases the resources held by the repository storage.
func (r *Repository) Close() error {
	r.blobs.Purge()
	if c, ok := r.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
