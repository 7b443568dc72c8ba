package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/quota"
)

const testKey = "test-key"

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestClient_QuotaGuardBlocksBeforeNetwork(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, `[]`)
	const max = 3
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(max, 0))
	ctx := context.Background()

	for i := 0; i < max; i++ {
		_, err := c.FetchMatches(ctx, MatchQuery{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(max), atomic.LoadInt32(hits))

	_, err := c.FetchMatches(ctx, MatchQuery{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindQuotaExceeded))
	assert.Equal(t, int32(max), atomic.LoadInt32(hits), "no request may reach the provider once the quota is spent")

	st, err := c.QuotaStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, max, st.Used)
	assert.Equal(t, 0, st.Remaining)
}

func TestClient_FailedCallsStillConsumeQuota(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"message":"boom"}`)
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(2, 0))
	ctx := context.Background()

	_, err := c.FetchMatches(ctx, MatchQuery{})
	require.Error(t, err)

	st, err := c.QuotaStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Used)
}

func TestClient_HTTPErrorCarriesStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusUnauthorized, apperr.KindAuth},
		{http.StatusForbidden, apperr.KindAuth},
		{http.StatusTooManyRequests, apperr.KindQuotaExceeded},
		{http.StatusNotFound, apperr.KindTransport},
		{http.StatusBadGateway, apperr.KindTransport},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, `{"message":"nope"}`)
			c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))

			_, err := c.FetchMatches(context.Background(), MatchQuery{})
			require.Error(t, err)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Contains(t, httpErr.Body, "nope")
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestClient_NetworkFailureIsTransport(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	srv.Close()

	c := NewClient(srv.URL, testKey, time.Second, quota.NewMemory(10, 0))
	_, err := c.FetchMatches(context.Background(), MatchQuery{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(err))
}

func TestClient_RequestShape(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`[{"id": 1, "tournament_name": "Wimbledon"}, "garbage", {"id": "2"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", testKey, 5*time.Second, quota.NewMemory(10, 0))
	page, err := c.FetchMatches(context.Background(), MatchQuery{
		From:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Order: "start_time.asc",
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/matches", got.URL.Path)
	assert.Equal(t, "Bearer "+testKey, got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, []string{"gte.2025-07-01T00:00:00Z", "lt.2025-08-01T00:00:00Z"}, got.URL.Query()["start_time"])
	assert.Equal(t, "150", got.URL.Query().Get("limit"))
	assert.Equal(t, "start_time.asc", got.URL.Query().Get("order"))

	require.Len(t, page.Matches, 2)
	assert.Equal(t, 1, page.Malformed)
	assert.Equal(t, int64(2), page.Matches[1].ID.Value)
}

func TestClient_NonArrayPageFails(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"error": "unexpected"}`)
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))

	_, err := c.FetchMatches(context.Background(), MatchQuery{})
	require.Error(t, err)
}

func TestClient_Ping(t *testing.T) {
	var limit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[{"id": 10}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))
	n, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "1", limit)
}

func TestClient_FetchRaw(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"anything": [1, 2]}`)
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))

	body, err := c.FetchRaw(context.Background(), "tournaments", url.Values{"limit": {"1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"anything": [1, 2]}`, string(body))

	bad, _ := newTestServer(t, http.StatusOK, `not json`)
	c = NewClient(bad.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))
	_, err = c.FetchRaw(context.Background(), "tournaments", nil)
	require.Error(t, err)
}

type countingTransport struct {
	requests int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.requests, 1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestClient_WithHTTPClient(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, `[]`)
	transport := &countingTransport{}
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0),
		WithHTTPClient(&http.Client{Transport: transport, Timeout: time.Second}))

	_, err := c.FetchMatches(context.Background(), MatchQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&transport.requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestClient_HonoursCancellation(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, `[]`)
	c := NewClient(srv.URL, testKey, 5*time.Second, quota.NewMemory(10, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchMatches(ctx, MatchQuery{})
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestMatchQuery_ClampsLimit(t *testing.T) {
	assert.Equal(t, "150", MatchQuery{Limit: 1000}.Values().Get("limit"))
	assert.Equal(t, "150", MatchQuery{}.Values().Get("limit"))
	assert.Equal(t, "20", MatchQuery{Limit: 20}.Values().Get("limit"))
	assert.Empty(t, MatchQuery{}.Values()["start_time"])
}
