package jobs

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/config"
	"github.com/debugflow/revd/pkg/git"
	"github.com/debugflow/revd/pkg/test"
	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistered(t *testing.T) {
	is := is.New(t)
	j, ok := List()["repo-stats"]
	is.True(ok)
	is.True(j.Runner != nil)
	is.Equal(Names(), []string{"repo-stats"})
}

func TestRepoStatsSpec(t *testing.T) {
	is := is.New(t)
	is.Equal(repoStats{}.Spec(context.Background()), "")

	cfg := config.DefaultConfig()
	ctx := config.WithContext(context.Background(), cfg)
	is.Equal(repoStats{}.Spec(ctx), "@every 1m")
}

func TestRepoStatsFunc(t *testing.T) {
	is := is.New(t)
	r, hashes := test.Linear(t)
	_, err := r.CreateTag("v1", hashes[0], nil)
	is.NoErr(err)

	repo, err := git.Open(r.Path)
	is.NoErr(err)

	cfg := config.DefaultConfig()
	ctx := log.WithContext(context.Background(), log.New(io.Discard))
	ctx = config.WithContext(ctx, cfg)
	be := backend.New(ctx, cfg, repo)
	t.Cleanup(func() { _ = be.Close(context.Background()) })
	ctx = backend.WithContext(ctx, be)

	repoStats{}.Func(ctx)()
	is.Equal(testutil.ToFloat64(repoTags), 1.0)
	is.Equal(testutil.ToFloat64(repoBranches), 1.0)
	is.Equal(testutil.ToFloat64(repoDetached), 0.0)
}

func TestRepoStatsNoBackend(t *testing.T) {
	// Must not panic without a backend.
	repoStats{}.Func(context.Background())()
}
