// Package client is a Go client for the revd HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// DefaultTimeout is the default timeout of a single request.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader is the header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// Client talks to a revd server.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the timeout of every request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New returns a client for the server at rawURL.
func New(rawURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", rawURL)
	}

	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "revd",
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// RangeOptions select a commit range. Empty fields fall back to the
// server defaults.
type RangeOptions struct {
	Base   string `url:"baseRev,omitempty"`
	Head   string `url:"headRev,omitempty"`
	Filter string `url:"filter,omitempty"`
}

// CreateOptions describe a tag or branch to create.
type CreateOptions struct {
	Name     string `url:"name"`
	Revision string `url:"revision"`
	Force    bool   `url:"force,omitempty"`
}

type filterOptions struct {
	Filter string `url:"filter,omitempty"`
}

// Commit returns the commit rev resolves to.
func (c *Client) Commit(ctx context.Context, rev string) (proto.Commit, error) {
	var commit proto.Commit
	err := c.do(ctx, http.MethodGet, "/api/commit/"+escapeRevision(rev), nil, &commit)
	return commit, err
}

// Checkout checks out rev and returns its commit.
func (c *Client) Checkout(ctx context.Context, rev string) (proto.Commit, error) {
	var commit proto.Commit
	err := c.do(ctx, http.MethodPost, "/api/commit/"+escapeRevision(rev), nil, &commit)
	return commit, err
}

// Commits lists the commits of a range, newest first.
func (c *Client) Commits(ctx context.Context, opts RangeOptions) ([]proto.Commit, error) {
	var res struct {
		Commits []proto.Commit `json:"commits"`
	}
	err := c.do(ctx, http.MethodGet, "/api/commits", opts, &res)
	return res.Commits, err
}

// Diffs returns the file changes between two revisions. The filter field
// of opts is ignored.
func (c *Client) Diffs(ctx context.Context, opts RangeOptions) ([]proto.Diff, error) {
	opts.Filter = ""
	var res struct {
		Diffs []proto.Diff `json:"diffs"`
	}
	err := c.do(ctx, http.MethodGet, "/api/diffs", opts, &res)
	return res.Diffs, err
}

// Tags lists the tags matching filter.
func (c *Client) Tags(ctx context.Context, filter string) ([]proto.Tag, error) {
	var res struct {
		Tags []proto.Tag `json:"tags"`
	}
	err := c.do(ctx, http.MethodGet, "/api/tags", filterOptions{filter}, &res)
	return res.Tags, err
}

// CreateTag creates a lightweight tag.
func (c *Client) CreateTag(ctx context.Context, opts CreateOptions) (proto.Tag, error) {
	var tag proto.Tag
	err := c.do(ctx, http.MethodPost, "/api/tags", opts, &tag)
	return tag, err
}

// Branches lists the local branches matching filter.
func (c *Client) Branches(ctx context.Context, filter string) ([]proto.Branch, error) {
	var res struct {
		Branches []proto.Branch `json:"branches"`
	}
	err := c.do(ctx, http.MethodGet, "/api/branches", filterOptions{filter}, &res)
	return res.Branches, err
}

// CreateBranch creates a local branch.
func (c *Client) CreateBranch(ctx context.Context, opts CreateOptions) (proto.Branch, error) {
	var branch proto.Branch
	err := c.do(ctx, http.MethodPost, "/api/branches", opts, &branch)
	return branch, err
}

// Status returns the repository status.
func (c *Client) Status(ctx context.Context) (proto.RepositoryStatus, error) {
	var st proto.RepositoryStatus
	err := c.do(ctx, http.MethodGet, "/api/repository/status", nil, &st)
	return st, err
}

// escapeRevision escapes every path segment of rev so that revisions like
// "HEAD~1" or "feature/x" reach the server intact.
func escapeRevision(rev string) string {
	parts := strings.Split(rev, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, path string, params interface{}, v interface{}) error {
	u := c.base.String() + path
	if params != nil {
		q, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if len(q) > 0 {
			u += "?" + q.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err //nolint:wrapcheck
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode >= http.StatusBadRequest {
		return decodeError(res)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
