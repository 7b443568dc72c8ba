package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/metrics"
	"sportrate/tennis-ingestion/internal/models"
	"sportrate/tennis-ingestion/internal/quota"
)

// MaxPageSize is the most matches the provider returns per call
const MaxPageSize = 150

// MatchesPath is the provider endpoint listing matches
const MatchesPath = "matches"

// bodyExcerpt bounds how much of an error body is kept in HTTPError
const bodyExcerpt = 512

// HTTPError is a non-2xx response from the provider
type HTTPError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tennis API %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client is the SportDevs tennis API client. Every call takes one unit from
// the quota counter before touching the network; there are no retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	quota      quota.Counter
	limiter    *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithRequestsPerMinute paces outbound calls. Zero or less disables pacing.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a tennis API client drawing on counter
func NewClient(baseURL, apiKey string, timeout time.Duration, counter quota.Counter, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		quota:   counter,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a quota-gated GET request to the tennis API
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	st, err := c.quota.Take(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindQuotaExceeded) {
			metrics.RecordQuotaRejection()
			log.Warn().
				Str("path", path).
				Int("used", st.Used).
				Int("max", st.Max).
				Msg("Tennis API quota exhausted, request not sent")
		}
		return nil, err
	}
	metrics.UpdateQuota(st.Used, st.Remaining)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Wrap(err, apperr.KindTransport, "rate limit wait")
		}
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindTransport, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tennis-ingestion/1.0")

	log.Debug().
		Str("url", u).
		Int("quota_used", st.Used).
		Int("quota_remaining", st.Remaining).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(path, "network_error", time.Since(start).Seconds())
		return nil, apperr.Wrap(err, apperr.KindTransport, "tennis API request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(path, "read_error", time.Since(start).Seconds())
		return nil, apperr.Wrap(err, apperr.KindTransport, "read response body")
	}
	metrics.RecordAPICall(path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Debug().
			Str("url", u).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil
	}

	httpErr := &HTTPError{StatusCode: resp.StatusCode, Path: path, Body: truncate(body, bodyExcerpt)}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperr.Wrap(httpErr, apperr.KindAuth, "tennis API authentication failed")
	case http.StatusTooManyRequests:
		return nil, apperr.WithHint(
			apperr.Wrap(httpErr, apperr.KindQuotaExceeded, "tennis API rate limit reached"),
			"the provider refused the call; its daily limit is shared by every key on the plan",
		)
	default:
		return nil, apperr.Wrap(httpErr, apperr.KindTransport, "tennis API request failed")
	}
}

// MatchQuery selects a page of matches
type MatchQuery struct {
	From  time.Time // inclusive, zero for unbounded
	To    time.Time // exclusive, zero for unbounded
	Limit int
	// Order is a provider order clause such as "start_time.desc"
	Order string
}

// Values encodes the query as provider URL parameters
func (q MatchQuery) Values() url.Values {
	params := url.Values{}
	if !q.From.IsZero() {
		params.Add("start_time", "gte."+q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Add("start_time", "lt."+q.To.UTC().Format(time.RFC3339))
	}

	limit := q.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	params.Set("limit", strconv.Itoa(limit))

	if q.Order != "" {
		params.Set("order", q.Order)
	}
	return params
}

// Page is one decoded page of provider matches
type Page struct {
	Matches []*models.RawMatch
	// Malformed counts records that could not be decoded at all
	Malformed int
	Body      json.RawMessage
}

// FetchMatches fetches one page of matches. This costs one quota unit.
func (c *Client) FetchMatches(ctx context.Context, q MatchQuery) (*Page, error) {
	body, err := c.get(ctx, MatchesPath, q.Values())
	if err != nil {
		return nil, errors.Wrap(err, "fetch matches")
	}

	matches, recordErrs, err := models.ParseRawMatches(body)
	if err != nil {
		return nil, errors.Wrapf(err, "decode matches page (%d bytes)", len(body))
	}
	for _, recErr := range recordErrs {
		log.Warn().Err(recErr).Msg("Skipping undecodable match record")
	}

	return &Page{Matches: matches, Malformed: len(recordErrs), Body: body}, nil
}

// Ping fetches a single match to prove the key and base URL work. It
// returns the number of records received.
func (c *Client) Ping(ctx context.Context) (int, error) {
	page, err := c.FetchMatches(ctx, MatchQuery{Limit: 1})
	if err != nil {
		return 0, err
	}
	return len(page.Matches), nil
}

// FetchRaw returns the undecoded body of an arbitrary endpoint
func (c *Client) FetchRaw(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", path)
	}
	if !json.Valid(body) {
		return nil, errors.Newf("tennis API %s returned a non-JSON body", path)
	}
	return body, nil
}

// QuotaStatus reports the client's quota without consuming any
func (c *Client) QuotaStatus(ctx context.Context) (quota.Status, error) {
	return c.quota.Status(ctx)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
