// Package sanity provides a cms.Client implementation backed by the Sanity
// HTTP API.
package sanity

import (
	"aviators/pkg/cms"
	"aviators/pkg/content"
	"aviators/pkg/serrors"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIVersion is the dated API version requests are pinned to.
const DefaultAPIVersion = "v2021-06-07"

const postsQuery = `*[_type == "post"] | order(publishedAt desc)`

// Options identifies the Sanity project and dataset.
type Options struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	// BaseURL overrides https://<projectId>.api.sanity.io.
	BaseURL string
}

// Client talks to the Sanity data API and fulfills the cms.Client interface.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
	now        func() time.Time
}

// New constructs a Client that uses the provided http.Client.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://" + opts.ProjectID + ".api.sanity.io"
	}

	return &Client{httpClient: httpClient, opts: opts, now: time.Now}
}

// Ensure Client conforms to the cms.Client interface at compile time.
var _ cms.Client = (*Client)(nil)

// ParseRateLimit extracts Sanity's per-second rate-limit information from the
// response headers. The window resets at the next full second unless the
// server asked to retry later. Without rate-limit headers ResetAt stays zero.
func ParseRateLimit(h http.Header, now time.Time) cms.RateLimitStatus {
	atoi := func(s string) int {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}

		return 0
	}

	rl := cms.RateLimitStatus{
		Limit:     atoi(h.Get("X-RateLimit-Limit-Second")),
		Remaining: atoi(h.Get("X-RateLimit-Remaining-Second")),
	}
	if rl.Limit > 0 {
		rl.ResetAt = now.Truncate(time.Second).Add(time.Second)
	}
	if s := atoi(h.Get("Retry-After")); s > 0 {
		rl.ResetAt = now.Add(time.Duration(s) * time.Second)
	}

	return rl
}

func (c *Client) endpoint(kind string) string {
	return fmt.Sprintf("%s/%s/data/%s/%s", c.opts.BaseURL, c.opts.APIVersion, kind, c.opts.Dataset)
}

// do sends req and returns the response body. Non-2xx responses become
// errors; 429 is ErrRateLimited and 404 is ErrNotFound.
func (c *Client) do(req *http.Request) ([]byte, cms.RateLimitStatus, error) {
	req.Header.Set("Authorization", "Bearer "+c.opts.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cms.RateLimitStatus{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl := ParseRateLimit(resp.Header, c.now())
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rl, fmt.Errorf("could not read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, rl, serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode == http.StatusNotFound:
		return nil, rl, serrors.With(serrors.ErrNotFound, "not found: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, rl, serrors.With(serrors.ErrUnavailable, "cms rejected credentials: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, rl, fmt.Errorf("cms request failed with %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return b, rl, nil
}

func (c *Client) mutate(ctx context.Context, mutation map[string]any) (cms.RateLimitStatus, error) {
	body, err := json.Marshal(map[string]any{"mutations": []any{mutation}})
	if err != nil {
		return cms.RateLimitStatus{}, fmt.Errorf("could not marshal mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("mutate"), bytes.NewReader(body))
	if err != nil {
		return cms.RateLimitStatus{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, rl, err := c.do(req)

	return rl, err
}

// UpsertPost sends a createOrReplace mutation for doc.
func (c *Client) UpsertPost(ctx context.Context, doc cms.Document) (cms.RateLimitStatus, error) {
	return c.mutate(ctx, map[string]any{"createOrReplace": doc})
}

// DeletePost sends a delete mutation for the document.
func (c *Client) DeletePost(ctx context.Context, documentID string) (cms.RateLimitStatus, error) {
	return c.mutate(ctx, map[string]any{"delete": map[string]string{"id": documentID}})
}

// Posts runs a GROQ query for every post document.
func (c *Client) Posts(ctx context.Context) ([]content.Draft, error) {
	u := c.endpoint("query") + "?query=" + url.QueryEscape(postsQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	b, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var res struct {
		Result []content.Draft `json:"result"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return res.Result, nil
}

// Name implements monitor.Checker.
func (c *Client) Name() string { return "sanity" }

// Check implements monitor.Checker with a query that matches nothing.
func (c *Client) Check(ctx context.Context) error {
	u := c.endpoint("query") + "?query=" + url.QueryEscape(`count(*[_type == "post"][0...1])`)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	if _, _, err := c.do(req); err != nil {
		return fmt.Errorf("could not reach sanity: %w", err)
	}

	return nil
}
