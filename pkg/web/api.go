package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/backend"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/gorilla/mux"
)

// APIRoute is a route of the repository API.
type APIRoute struct {
	method  []string
	handler http.HandlerFunc
	path    string
}

var _ http.Handler = APIRoute{}

// ServeHTTP implements http.Handler.
func (a APIRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var hasMethod bool
	for _, m := range a.method {
		if m == r.Method {
			hasMethod = true
			break
		}
	}

	if !hasMethod {
		renderMethodNotAllowed(w, r, a.method)
		return
	}

	a.handler(w, r)
}

// APIController registers the repository API routes.
func APIController(_ context.Context, r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	for _, route := range apiRoutes {
		api.Handle(route.path, route)
	}
}

var apiRoutes = []APIRoute{
	{
		method:  []string{http.MethodGet},
		handler: getCommits,
		path:    "/commits",
	},
	{
		method:  []string{http.MethodGet},
		handler: getDiffs,
		path:    "/diffs",
	},
	{
		method:  []string{http.MethodGet, http.MethodPost},
		handler: handleTags,
		path:    "/tags",
	},
	{
		method:  []string{http.MethodGet, http.MethodPost},
		handler: handleBranches,
		path:    "/branches",
	},
	{
		method:  []string{http.MethodGet},
		handler: getRepositoryStatus,
		path:    "/repository/status",
	},
	{
		method:  []string{http.MethodGet, http.MethodPost},
		handler: handleCommit,
		path:    "/commit/{revision:.+}",
	},
}

// CommitsResponse is the body of GET /api/commits.
type CommitsResponse struct {
	Commits []proto.Commit `json:"commits"`
}

// DiffsResponse is the body of GET /api/diffs.
type DiffsResponse struct {
	Diffs []proto.Diff `json:"diffs"`
}

// TagsResponse is the body of GET /api/tags.
type TagsResponse struct {
	Tags []proto.Tag `json:"tags"`
}

// BranchesResponse is the body of GET /api/branches.
type BranchesResponse struct {
	Branches []proto.Branch `json:"branches"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	rev := mux.Vars(r)["revision"]

	var (
		c   proto.Commit
		err error
	)
	if r.Method == http.MethodPost {
		c, err = be.Checkout(ctx, rev)
	} else {
		c, err = be.Commit(ctx, rev)
	}
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, c)
}

func getCommits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	q := r.URL.Query()

	commits, err := be.Commits(ctx, revisionRange(r), q.Get("filter"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, CommitsResponse{Commits: commits})
}

func getDiffs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	diffs, err := be.Diffs(ctx, revisionRange(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, DiffsResponse{Diffs: diffs})
}

func handleTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	q := r.URL.Query()

	if r.Method == http.MethodGet {
		tags, err := be.Tags(ctx, q.Get("filter"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, TagsResponse{Tags: tags})
		return
	}

	name, rev, force, err := createParams(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	tag, err := be.CreateTag(ctx, name, rev, force)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, tag)
}

func handleBranches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	q := r.URL.Query()

	if r.Method == http.MethodGet {
		branches, err := be.Branches(ctx, q.Get("filter"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, BranchesResponse{Branches: branches})
		return
	}

	name, rev, force, err := createParams(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	branch, err := be.CreateBranch(ctx, name, rev, force)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, branch)
}

func getRepositoryStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	st, err := be.Status(ctx)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, st)
}

// revisionRange reads the optional baseRev and headRev query parameters.
func revisionRange(r *http.Request) proto.RevisionRange {
	q := r.URL.Query()
	return proto.NewRevisionRange(q.Get("baseRev"), q.Get("headRev"))
}

// createParams reads the name, revision and force query parameters of a
// tag or branch creation.
func createParams(r *http.Request) (name, rev string, force bool, err error) {
	q := r.URL.Query()
	name = q.Get("name")
	rev = q.Get("revision")
	if name == "" {
		return "", "", false, proto.BadRequestf("missing name parameter")
	}
	if rev == "" {
		return "", "", false, proto.BadRequestf("missing revision parameter")
	}
	if v := q.Get("force"); v != "" {
		force, err = strconv.ParseBool(v)
		if err != nil {
			return "", "", false, proto.BadRequestf("invalid force parameter %q", v)
		}
	}
	return name, rev, force, nil
}

func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

// renderError writes err as an ErrorResponse with the matching status code.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := proto.StatusCode(err)
	logger := log.FromContext(r.Context())
	if code >= http.StatusInternalServerError && !errors.Is(err, proto.ErrUnavailable) {
		logger.Error("request failed", "err", err)
	} else {
		logger.Debug("request failed", "status", code, "err", err)
	}

	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	renderJSON(w, code, ErrorResponse{
		Status:  code,
		Reason:  http.StatusText(code),
		Message: err.Error(),
	})
}
