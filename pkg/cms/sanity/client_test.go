package sanity_test

import (
	"aviators/pkg/cms"
	"aviators/pkg/cms/sanity"
	"aviators/pkg/serrors"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *sanity.Client {
	return sanity.New(&http.Client{Transport: fn}, sanity.Options{
		ProjectID: "proj",
		Dataset:   "production",
		Token:     "test-token",
	})
}

func response(status int, h http.Header, body string) *http.Response {
	if h == nil {
		h = http.Header{}
	}

	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func Test_parseRateLimit(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 600000000, time.UTC)

	h := http.Header{}
	h.Set("X-RateLimit-Limit-Second", "25")
	h.Set("X-RateLimit-Remaining-Second", "7")
	rl := sanity.ParseRateLimit(h, now)
	require.Equal(t, 25, rl.Limit)
	require.Equal(t, 7, rl.Remaining)
	require.True(t, rl.ResetAt.Equal(time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC)))

	h.Set("Retry-After", "3")
	rl = sanity.ParseRateLimit(h, now)
	require.True(t, rl.ResetAt.Equal(now.Add(3*time.Second)))

	rl = sanity.ParseRateLimit(http.Header{}, now)
	require.Zero(t, rl.Limit)
	require.Zero(t, rl.Remaining)
	require.True(t, rl.ResetAt.IsZero())
}

func TestClient_UpsertPost_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "proj.api.sanity.io", r.URL.Host)
		require.Equal(t, "/v2021-06-07/data/mutate/production", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Mutations []map[string]cms.Document `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Mutations, 1)
		require.Equal(t, "post-1", body.Mutations[0]["createOrReplace"].ID)

		h := http.Header{}
		h.Set("X-RateLimit-Limit-Second", "25")
		h.Set("X-RateLimit-Remaining-Second", "24")

		return response(http.StatusOK, h, `{"transactionId":"tx"}`), nil
	})

	rl, err := c.UpsertPost(context.Background(), cms.Document{ID: "post-1", Type: cms.PostType})
	require.NoError(t, err)
	require.Equal(t, 25, rl.Limit)
	require.Equal(t, 24, rl.Remaining)
}

func TestClient_DeletePost(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"mutations":[{"delete":{"id":"post-9"}}]}`, string(b))

		return response(http.StatusOK, nil, `{}`), nil
	})

	_, err := c.DeletePost(context.Background(), "post-9")
	require.NoError(t, err)
}

func TestClient_rateLimited429(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("X-RateLimit-Limit-Second", "25")
		h.Set("X-RateLimit-Remaining-Second", "0")
		h.Set("Retry-After", "2")

		return response(http.StatusTooManyRequests, h, "slow down"), nil
	})

	rl, err := c.UpsertPost(context.Background(), cms.Document{ID: "post-1"})
	require.ErrorIs(t, err, serrors.ErrRateLimited)
	require.Equal(t, 0, rl.Remaining)
	require.True(t, rl.ResetAt.After(time.Now()))
}

func TestClient_errors(t *testing.T) {
	cases := []struct {
		status int
		kind   error
	}{
		{http.StatusNotFound, serrors.ErrNotFound},
		{http.StatusUnauthorized, serrors.ErrUnavailable},
	}
	for _, tc := range cases {
		c := newTestClient(func(r *http.Request) (*http.Response, error) {
			return response(tc.status, nil, "nope"), nil
		})
		_, err := c.DeletePost(context.Background(), "post-1")
		require.ErrorIs(t, err, tc.kind)
	}

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return response(http.StatusBadRequest, nil, `{"error":"bad mutation"}`), nil
	})
	_, err := c.UpsertPost(context.Background(), cms.Document{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), "bad mutation")
}

func TestClient_Posts(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v2021-06-07/data/query/production", r.URL.Path)
		require.Contains(t, r.URL.Query().Get("query"), `_type == "post"`)

		return response(http.StatusOK, nil, `{"result":[{
			"title":"CPL Guide",
			"slug":{"_type":"slug","current":"cpl-guide"},
			"body":[{"_type":"block","style":"h2","children":[{"_type":"span","text":"Steps"}]}],
			"author":{"name":"Ankit Kumar","image":"/a.jpg"},
			"publishedAt":"2025-03-01T00:00:00Z"
		}]}`), nil
	})

	drafts, err := c.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Equal(t, "cpl-guide", string(drafts[0].Slug))
	require.Equal(t, "## Steps", drafts[0].BodyText())
	require.Equal(t, "Ankit Kumar", drafts[0].Author.Name)
}

func TestClient_Check(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, nil, `{"result":0}`), nil
	})
	require.NoError(t, c.Check(context.Background()))
	require.Equal(t, "sanity", c.Name())
}
