package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/actor"
	"github.com/debugflow/revd/pkg/config"
	"github.com/debugflow/revd/pkg/git"
	"github.com/debugflow/revd/pkg/proto"
)

// Backend is the revd backend. It owns the repository through an actor and
// exposes one method per supported operation.
type Backend struct {
	ctx    context.Context
	cfg    *config.Config
	logger *log.Logger
	actor  *actor.Actor[*git.Repository]
}

// Open opens the configured repository and returns a backend owning it.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	logger := log.FromContext(ctx)
	repo, err := git.Open(cfg.RepoPath,
		git.WithLogger(logger),
		git.WithBlobCacheSize(cfg.Cache.BlobCacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("open repository %q: %w", cfg.RepoPath, err)
	}

	return New(ctx, cfg, repo), nil
}

// New returns a new backend owning repo. The caller must not use repo
// afterwards.
func New(ctx context.Context, cfg *config.Config, repo *git.Repository) *Backend {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		actor: actor.New(repo,
			actor.WithName("repository"),
			actor.WithMailboxSize(cfg.Actor.MailboxSize),
			actor.WithLogger(log.FromContext(ctx)),
			actor.WithCloser(repo.Close),
		),
	}

	logger.Debug("repository opened", "path", repo.Path, "bare", repo.IsBare)
	return b
}

// Close stops the actor and releases the repository.
func (b *Backend) Close(ctx context.Context) error {
	return b.actor.Stop(ctx)
}

// Pending returns the number of requests waiting for the repository and
// the mailbox capacity.
func (b *Backend) Pending() (int, int) {
	return b.actor.Len(), b.actor.Cap()
}

// call sends msg to the actor, bounded by the configured call timeout.
func call[R any](ctx context.Context, b *Backend, msg actor.Message[*git.Repository, R]) (R, error) {
	timeout := b.cfg.Actor.CallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := actor.Call(ctx, b.actor, msg)
	if err != nil {
		b.logger.Debug("request failed", "message", msg.Name(), "err", err)
	}
	return res, err
}

// Commit returns the commit rev resolves to.
func (b *Backend) Commit(ctx context.Context, rev string) (proto.Commit, error) {
	return call[proto.Commit](ctx, b, GetRevision{Revision: rev})
}

// Checkout moves the working tree to rev and returns the new HEAD commit.
func (b *Backend) Checkout(ctx context.Context, rev string) (proto.Commit, error) {
	c, err := call[proto.Commit](ctx, b, CheckoutRevision{Revision: rev})
	if err == nil {
		b.logger.Info("checked out revision", "revision", rev, "commit", c.ID)
	}
	return c, err
}

// Commits lists the commits of rng, newest first, matching filter.
func (b *Backend) Commits(ctx context.Context, rng proto.RevisionRange, filter string) ([]proto.Commit, error) {
	return call[[]proto.Commit](ctx, b, ListCommits{Range: rng, Filter: filter})
}

// Diffs lists the file changes of rng.
func (b *Backend) Diffs(ctx context.Context, rng proto.RevisionRange) ([]proto.Diff, error) {
	return call[[]proto.Diff](ctx, b, ListDiffs{Range: rng})
}

// Tags lists the tags matching filter.
func (b *Backend) Tags(ctx context.Context, filter string) ([]proto.Tag, error) {
	return call[[]proto.Tag](ctx, b, ListTags{Filter: filter})
}

// CreateTag creates a lightweight tag at rev.
func (b *Backend) CreateTag(ctx context.Context, name, rev string, force bool) (proto.Tag, error) {
	t, err := call[proto.Tag](ctx, b, CreateTag{Tag: name, Revision: rev, Force: force})
	if err == nil {
		b.logger.Info("created tag", "tag", name, "commit", t.Commit.ID, "force", force)
	}
	return t, err
}

// Branches lists the branches matching filter.
func (b *Backend) Branches(ctx context.Context, filter string) ([]proto.Branch, error) {
	return call[[]proto.Branch](ctx, b, ListBranches{Filter: filter})
}

// CreateBranch creates a branch at rev.
func (b *Backend) CreateBranch(ctx context.Context, name, rev string, force bool) (proto.Branch, error) {
	br, err := call[proto.Branch](ctx, b, CreateBranch{Branch: name, Revision: rev, Force: force})
	if err == nil {
		b.logger.Info("created branch", "branch", name, "commit", br.Head.ID, "force", force)
	}
	return br, err
}

// Status returns the repository status.
func (b *Backend) Status(ctx context.Context) (proto.RepositoryStatus, error) {
	return call[proto.RepositoryStatus](ctx, b, GetRepositoryStatus{})
}

// Stats returns repository counters.
func (b *Backend) Stats(ctx context.Context) (RepositoryStats, error) {
	return call[RepositoryStats](ctx, b, GetRepositoryStats{})
}
