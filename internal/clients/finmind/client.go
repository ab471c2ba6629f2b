// Package finmind provides the FinMind v4 data API client used to fill the local cache.
package finmind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the FinMind API.
	DefaultBaseURL = "https://api.finmindtrade.com/api/v4"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxRetries is the number of attempts per fetch.
	DefaultMaxRetries = 3

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is a FinMind API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	log        zerolog.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client. The client is copied if WithTimeout
// is also given, so the caller's client is never modified.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithRetry sets the attempt budget and the first backoff delay (doubled per attempt).
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// NewClient creates a new FinMind client. An empty token uses the unauthenticated tier.
func NewClient(token string, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		log:        log.With().Str("client", "finmind").Logger(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxRetries: DefaultMaxRetries,
		backoff:    time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}

	switch {
	case c.httpClient == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}

	return c
}

// Budget is the longest one Fetch can take: every attempt running to its timeout
// plus the backoff waits between attempts. Zero means attempts are unbounded.
func (c *Client) Budget() time.Duration {
	if c.httpClient.Timeout <= 0 {
		return 0
	}
	budget := time.Duration(c.maxRetries) * c.httpClient.Timeout
	for attempt := 0; attempt < c.maxRetries-1; attempt++ {
		budget += c.backoff * time.Duration(1<<uint(attempt))
	}
	return budget
}

// Fetch downloads one dataset for a company starting at start and returns it as a Table
// with the kind's canonical columns first. Failures wrap domain.ErrRemoteUnavailable or
// domain.ErrMalformedDataset.
func (c *Client) Fetch(ctx context.Context, kind domain.DatasetKind, companyID string, start time.Time) (*domain.Table, error) {
	spec := kind.Spec()

	params := url.Values{}
	params.Set("dataset", spec.Dataset)
	params.Set("data_id", companyID)
	params.Set("start_date", start.Format(domain.DateLayout))
	params.Set("token", c.token)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		rows, err := c.get(ctx, spec.Dataset, params)
		if err == nil {
			table := toTable(spec.Columns, rows)
			c.log.Debug().
				Str("dataset", spec.Dataset).
				Str("company_id", companyID).
				Int("rows", table.Len()).
				Msg("Fetched dataset")
			return table, nil
		}

		lastErr = err
		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries-1 {
			waitTime := c.backoff * time.Duration(1<<uint(attempt)) // exponential backoff
			c.log.Warn().Err(err).
				Str("dataset", spec.Dataset).
				Str("company_id", companyID).
				Int("attempt", attempt+1).
				Dur("wait", waitTime).
				Msg("Fetch failed, retrying")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, ctx.Err())
			case <-time.After(waitTime):
			}
		}
	}

	if errors.Is(lastErr, domain.ErrMalformedDataset) || errors.Is(lastErr, domain.ErrRemoteUnavailable) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s failed after %d attempts: %v", domain.ErrRemoteUnavailable, spec.Dataset, c.maxRetries, lastErr)
}

// get performs a GET request to the data endpoint and decodes the row objects.
func (c *Client) get(ctx context.Context, dataset string, params url.Values) ([]map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrRemoteUnavailable, err)
	}

	reqURL := fmt.Sprintf("%s/data?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.log.Debug().Str("dataset", dataset).Str("data_id", params.Get("data_id")).Msg("FinMind API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(body)),
			Dataset:    dataset,
		}
	}

	return decodeRows(dataset, body)
}

func decodeRows(dataset string, body []byte) ([]map[string]any, error) {
	var envelope response
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode response: %v", domain.ErrMalformedDataset, dataset, err)
	}

	if envelope.Status != 0 && envelope.Status != http.StatusOK {
		apiErr := &APIError{StatusCode: envelope.Status, Message: envelope.Msg, Dataset: dataset}
		// 402 is FinMind's request quota message; treat like 429.
		if envelope.Status == http.StatusPaymentRequired || envelope.Status == http.StatusTooManyRequests {
			return nil, apiErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDataset, apiErr)
	}

	if !envelope.Data.present {
		return nil, fmt.Errorf("%w: %s: response has no data field", domain.ErrMalformedDataset, dataset)
	}
	return envelope.Data.rows, nil
}

// rawRows distinguishes an absent/null data field from an empty array.
type rawRows struct {
	present bool
	rows    []map[string]any
}

func (r *rawRows) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&r.rows); err != nil {
		return err
	}
	r.present = true
	return nil
}

// toTable lays out row objects under the canonical columns, appending any extra
// fields the provider added in sorted order.
func toTable(canonical []string, rows []map[string]any) *domain.Table {
	known := make(map[string]bool, len(canonical))
	for _, col := range canonical {
		known[col] = true
	}
	extraSet := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			if !known[key] {
				extraSet[key] = true
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for key := range extraSet {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	table := domain.NewTable(append(append([]string{}, canonical...), extras...))
	for _, row := range rows {
		values := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			values[i] = formatCell(row[col])
		}
		table.AppendRow(values...)
	}
	return table
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
