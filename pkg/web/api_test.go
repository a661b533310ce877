package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/actor"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/config"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/debugflow/revd/pkg/test"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/matryer/is"
)

func setup(t *testing.T) (http.Handler, [3]plumbing.Hash) {
	t.Helper()
	repo, hs := test.Linear(t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.RepoPath = repo.Path
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	ctx = config.WithContext(ctx, cfg)
	ctx = log.WithContext(ctx, log.New(testWriter{t}))
	be, err := backend.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = be.Close(ctx)
	})
	ctx = backend.WithContext(ctx, be)

	return NewRouter(ctx), hs
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func do(t *testing.T, h http.Handler, method, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if v != nil {
		if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
			t.Fatalf("%s %s: decode body: %v", method, target, err)
		}
	}
	return rec
}

func TestGetCommit(t *testing.T) {
	is := is.New(t)
	h, hs := setup(t)

	var c proto.Commit
	rec := do(t, h, http.MethodGet, "/api/commit/HEAD", &c)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(c.ID, hs[2].String())
	is.Equal(c.Summary, "third commit")
	is.True(rec.Header().Get(RequestIDHeader) != "")
	is.Equal(rec.Header().Get("Content-Type"), "application/json; charset=utf-8")

	var short proto.Commit
	rec = do(t, h, http.MethodGet, "/api/commit/"+hs[0].String()[:8], &short)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(short.ID, hs[0].String())
}

func TestGetCommitErrors(t *testing.T) {
	is := is.New(t)
	h, _ := setup(t)

	var e ErrorResponse
	rec := do(t, h, http.MethodGet, "/api/commit/missing", &e)
	is.Equal(rec.Code, http.StatusNotFound)
	is.Equal(e.Status, http.StatusNotFound)
	is.Equal(e.Reason, "Not Found")
	is.True(e.Message != "")

	rec = do(t, h, http.MethodGet, "/api/commit/HEAD~1..HEAD", &e)
	is.Equal(rec.Code, http.StatusBadRequest)
	is.Equal(e.Status, http.StatusBadRequest)
}

func TestListCommits(t *testing.T) {
	is := is.New(t)
	h, hs := setup(t)

	var res CommitsResponse
	rec := do(t, h, http.MethodGet, "/api/commits", &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Commits), 3)

	rec = do(t, h, http.MethodGet, "/api/commits?baseRev="+hs[0].String(), &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Commits), 2)
	is.Equal(res.Commits[0].ID, hs[2].String())
	is.Equal(res.Commits[1].ID, hs[1].String())

	rec = do(t, h, http.MethodGet, "/api/commits?filter=second", &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Commits), 1)

	var e ErrorResponse
	rec = do(t, h, http.MethodGet, "/api/commits?headRev=missing", &e)
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestListDiffs(t *testing.T) {
	is := is.New(t)
	h, hs := setup(t)

	var res DiffsResponse
	rec := do(t, h, http.MethodGet, "/api/diffs?baseRev="+hs[0].String()+"&headRev="+hs[1].String(), &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Diffs), 1)
	is.Equal(res.Diffs[0].Kind, proto.DiffKindText)
	is.Equal(*res.Diffs[0].New.Path, "README.md")
}

func TestTags(t *testing.T) {
	is := is.New(t)
	h, hs := setup(t)

	var tag proto.Tag
	rec := do(t, h, http.MethodPost, "/api/tags?name=v1&revision="+hs[0].String(), &tag)
	is.Equal(rec.Code, http.StatusCreated)
	is.Equal(tag.Name, "v1")
	is.Equal(tag.Commit.ID, hs[0].String())

	var e ErrorResponse
	rec = do(t, h, http.MethodPost, "/api/tags?name=v1&revision=HEAD", &e)
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/api/tags?name=v1&revision=HEAD&force=true", &tag)
	is.Equal(rec.Code, http.StatusCreated)
	is.Equal(tag.Commit.ID, hs[2].String())

	rec = do(t, h, http.MethodPost, "/api/tags?name=v2&revision=HEAD&force=maybe", &e)
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/api/tags?revision=HEAD", &e)
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/api/tags?name=v2&revision=missing", &e)
	is.Equal(rec.Code, http.StatusNotFound)

	var res TagsResponse
	rec = do(t, h, http.MethodGet, "/api/tags?filter=v*", &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Tags), 1)

	rec = do(t, h, http.MethodDelete, "/api/tags", &e)
	is.Equal(rec.Code, http.StatusMethodNotAllowed)
	is.Equal(rec.Header().Get("Allow"), "GET, POST")
}

func TestBranchesAndCheckout(t *testing.T) {
	is := is.New(t)
	h, hs := setup(t)

	var br proto.Branch
	rec := do(t, h, http.MethodPost, "/api/branches?name=feature&revision="+hs[1].String(), &br)
	is.Equal(rec.Code, http.StatusCreated)
	is.Equal(br.Head.ID, hs[1].String())

	var res BranchesResponse
	rec = do(t, h, http.MethodGet, "/api/branches", &res)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(len(res.Branches), 2)

	var c proto.Commit
	rec = do(t, h, http.MethodPost, "/api/commit/feature", &c)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(c.ID, hs[1].String())

	var st proto.RepositoryStatus
	rec = do(t, h, http.MethodGet, "/api/repository/status", &st)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(st.Head.ID, hs[1].String())
	is.Equal(*st.CurrentBranch, "feature")

	rec = do(t, h, http.MethodPost, "/api/commit/"+hs[0].String(), &c)
	is.Equal(rec.Code, http.StatusOK)

	var detached map[string]any
	rec = do(t, h, http.MethodGet, "/api/repository/status", &detached)
	is.Equal(rec.Code, http.StatusOK)
	_, ok := detached["currentBranch"]
	is.True(!ok) // absent when detached
}

func TestNotFoundRoute(t *testing.T) {
	is := is.New(t)
	h, _ := setup(t)

	var e ErrorResponse
	rec := do(t, h, http.MethodGet, "/nope", &e)
	is.Equal(rec.Code, http.StatusNotFound)
	is.Equal(e.Status, http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	is := is.New(t)
	h, _ := setup(t)

	rec := do(t, h, http.MethodGet, "/livez", nil)
	is.Equal(rec.Code, http.StatusOK)

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	is.Equal(rec.Code, http.StatusOK)
}

func TestRequestIDIsKept(t *testing.T) {
	is := is.New(t)
	h, _ := setup(t)

	id := "6b0e7c8a-4a3e-4a8e-9a6f-7b2b1f0a5c11"
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	is.Equal(rec.Header().Get(RequestIDHeader), id)
}

func TestRenderUnavailable(t *testing.T) {
	is := is.New(t)
	req := httptest.NewRequest(http.MethodGet, "/api/commits", nil)
	rec := httptest.NewRecorder()

	renderError(rec, req, actor.ErrMailboxFull)
	is.Equal(rec.Code, http.StatusServiceUnavailable)
	is.Equal(rec.Header().Get("Retry-After"), "1")

	var e ErrorResponse
	is.NoErr(json.NewDecoder(rec.Body).Decode(&e))
	is.Equal(e.Status, http.StatusServiceUnavailable)
	is.Equal(e.Reason, "Service Unavailable")
}
