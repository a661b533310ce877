package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repoTags = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "revd",
		Subsystem: "repository",
		Name:      "tags",
		Help:      "The number of tags in the repository",
	})

	repoBranches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "revd",
		Subsystem: "repository",
		Name:      "branches",
		Help:      "The number of local branches in the repository",
	})

	repoDetached = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "revd",
		Subsystem: "repository",
		Name:      "detached",
		Help:      "Whether HEAD is detached",
	})
)

func init() {
	Register("repo-stats", repoStats{})
}

type repoStats struct{}

var _ Runner = repoStats{}

// Spec implements Runner.
func (repoStats) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return ""
	}
	return cfg.Jobs.RepoStats
}

// Func implements Runner.
func (repoStats) Func(ctx context.Context) func() {
	logger := log.FromContext(ctx).WithPrefix("jobs.repo-stats")
	return func() {
		be := backend.FromContext(ctx)
		if be == nil {
			logger.Error("backend not found in context")
			return
		}

		st, err := be.Stats(ctx)
		if err != nil {
			logger.Warn("error collecting repository stats", "err", err)
			return
		}

		repoTags.Set(float64(st.Tags))
		repoBranches.Set(float64(st.Branches))
		if st.Detached {
			repoDetached.Set(1)
		} else {
			repoDetached.Set(0)
		}
		logger.Debug("repository stats", "tags", st.Tags, "branches", st.Branches, "detached", st.Detached)
	}
}
