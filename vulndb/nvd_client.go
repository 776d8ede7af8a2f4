// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vulndb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/monitoring"
	"github.com/l3montree-dev/cvesync/utils"
	pkgerrors "github.com/pkg/errors"
)

const (
	MaxResultsPerPage = 2000
	// the api rejects date ranges longer than 120 days
	MaxDateRange = 119 * 24 * time.Hour

	maxErrorBodyLength = 512
)

var ErrCVENotFound = errors.New("cve not found upstream")

type NVDClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	pageSize   int
	pageDelay  time.Duration
	timeout    time.Duration
	retry      RetryPolicy
	sleep      SleepFunc

	// single record lookups go through a response cache when set
	lookupClient    *http.Client
	lookupCacheSize int
	lookupCacheTTL  time.Duration
}

type ClientOption func(*NVDClient)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *NVDClient) {
		c.httpClient = httpClient
	}
}

// WithSleep replaces the function used to wait between retries.
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *NVDClient) {
		c.sleep = sleep
	}
}

func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *NVDClient) {
		c.retry = policy
	}
}

// WithLookupCache caches single CVE lookups for ttl. A ttl <= 0 disables the cache.
func WithLookupCache(size int, ttl time.Duration) ClientOption {
	return func(c *NVDClient) {
		c.lookupCacheSize = size
		c.lookupCacheTTL = ttl
	}
}

func WithPageDelay(delay time.Duration) ClientOption {
	return func(c *NVDClient) {
		c.pageDelay = delay
	}
}

func NewNVDClient(cfg config.NVDConfig, opts ...ClientOption) *NVDClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultNVDBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &NVDClient{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 3,
			},
		},
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		userAgent: "cvesync/" + config.Version,
		pageSize:  utils.Clamp(cfg.ResultsPerPage, 1, MaxResultsPerPage),
		pageDelay: cfg.RateLimitDelay,
		timeout:   timeout,
		retry:     NewRetryPolicy(cfg.MaxRetries, cfg.RateLimitDelay),
		sleep:     SleepContext,

		lookupCacheSize: 1000,
		lookupCacheTTL:  cfg.LookupCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lookupCacheTTL > 0 && c.lookupCacheSize > 0 {
		c.lookupClient = &http.Client{Transport: NewCacheTransport(c.httpClient.Transport, c.lookupCacheSize, c.lookupCacheTTL)}
	}
	return c
}

// FetchPage fetches a single page starting at startIndex. A pageSize <= 0 uses the configured size.
func (c *NVDClient) FetchPage(ctx context.Context, filters Filters, startIndex, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	pageSize = utils.Clamp(pageSize, 1, MaxResultsPerPage)
	if startIndex < 0 {
		startIndex = 0
	}

	u, err := c.buildURL(filters, startIndex, pageSize)
	if err != nil {
		return Page{}, err
	}

	var page Page
	if err := c.getJSON(ctx, c.httpClient, u, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Stream returns a lazy iterator over every record matching filters.
// maxResults <= 0 means no limit.
func (c *NVDClient) Stream(filters Filters, maxResults int) *RecordStream {
	return newRecordStream(c, filters, c.pageSize, maxResults, c.pageDelay)
}

// Probe returns the number of records matching filters without fetching them.
func (c *NVDClient) Probe(ctx context.Context, filters Filters) (int, error) {
	page, err := c.FetchPage(ctx, filters, 0, 1)
	if err != nil {
		return 0, err
	}
	return page.TotalResults, nil
}

func (c *NVDClient) FetchCVE(ctx context.Context, cveID string) (Item, error) {
	u, err := c.buildURL(Filters{CVEID: utils.NormalizeCVEID(cveID)}, 0, 1)
	if err != nil {
		return Item{}, err
	}
	httpClient := c.httpClient
	if c.lookupClient != nil {
		httpClient = c.lookupClient
	}

	var page Page
	if err := c.getJSON(ctx, httpClient, u, &page); err != nil {
		return Item{}, err
	}
	if len(page.Vulnerabilities) == 0 {
		return Item{}, pkgerrors.Wrap(ErrCVENotFound, cveID)
	}
	return page.Vulnerabilities[0], nil
}

// FetchRecent fetches all records modified in the last days days.
func (c *NVDClient) FetchRecent(ctx context.Context, days int) ([]Item, error) {
	if days < 1 {
		days = 1
	}
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	items := []Item{}
	for _, window := range SplitWindow(start, end, MaxDateRange) {
		stream := c.Stream(LastModifiedBetween(window.Start, window.End), 0)
		for stream.Next(ctx) {
			items = append(items, stream.Item())
		}
		if err := stream.Err(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Ping checks that the api answers.
func (c *NVDClient) Ping(ctx context.Context) error {
	_, err := c.FetchPage(ctx, Filters{}, 0, 1)
	return err
}

func (c *NVDClient) buildURL(filters Filters, startIndex, pageSize int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", pkgerrors.Wrap(err, "invalid nvd base url")
	}
	q := filters.Values()
	q.Set("startIndex", strconv.Itoa(startIndex))
	q.Set("resultsPerPage", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Values encodes the filters as query parameters.
func (f Filters) Values() url.Values {
	q := url.Values{}
	setTime := func(key string, t *time.Time) {
		if t != nil {
			q.Set(key, utils.FormatNVDTime(*t))
		}
	}
	setBool := func(key string, b *bool) {
		if b != nil {
			q.Set(key, strconv.FormatBool(*b))
		}
	}
	setString := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			q.Set(key, value)
		}
	}

	setTime("pubStartDate", f.PubStartDate)
	setTime("pubEndDate", f.PubEndDate)
	setTime("lastModStartDate", f.LastModStartDate)
	setTime("lastModEndDate", f.LastModEndDate)
	if f.CVEID != "" {
		setString("cveId", utils.NormalizeCVEID(f.CVEID))
	}
	setString("cpeName", f.CPEName)
	setString("cvssV2Severity", strings.ToUpper(f.CVSSV2Severity))
	setString("cvssV3Severity", strings.ToUpper(f.CVSSV3Severity))
	setString("keywordSearch", f.KeywordSearch)
	if f.KeywordSearch != "" && f.KeywordExactMatch {
		q.Set("keywordExactMatch", "")
	}
	setBool("hasCertAlerts", f.HasCertAlerts)
	setBool("hasCertNotes", f.HasCertNotes)
	setBool("hasKev", f.HasKev)
	setBool("hasOval", f.HasOval)
	return q
}

// getJSON runs the request through the retry policy and decodes the body into v.
func (c *NVDClient) getJSON(ctx context.Context, httpClient *http.Client, u string, v any) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.doOnce(ctx, httpClient, u, v)
		if err == nil {
			monitoring.NVDRequestsTotal.WithLabelValues("success").Inc()
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		monitoring.NVDRequestsTotal.WithLabelValues(errorReason(err)).Inc()

		delay, retry := c.retry.Next(attempt, err)
		if !retry {
			return withAttempts(err, attempt)
		}

		monitoring.NVDRetriesTotal.WithLabelValues(errorReason(err)).Inc()
		slog.Warn("nvd request failed, retrying", "attempt", attempt, "delay", delay.String(), "err", err)

		if err := c.sleep(ctx, delay); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}
}

func (c *NVDClient) doOnce(ctx context.Context, httpClient *http.Client, u string, v any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "could not create request before fetching from NVD")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	slog.Debug("fetching from nvd", "url", u)
	res, err := httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return transportError(err)
	}

	switch {
	case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{StatusCode: res.StatusCode, RetryAfter: retryAfter(res.Header)}
	case res.StatusCode >= 500:
		return &ServerError{StatusCode: res.StatusCode, Body: truncate(string(body))}
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return &ClientError{StatusCode: res.StatusCode, Body: truncate(string(body))}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Err: err}
	}
	return &NetworkError{Err: err}
}

// retryAfter reads the server provided delay in seconds from Retry-After or X-RateLimit-Reset.
func retryAfter(header http.Header) time.Duration {
	for _, key := range []string{"Retry-After", "X-RateLimit-Reset"} {
		value := strings.TrimSpace(header.Get(key))
		if value == "" {
			continue
		}
		if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
		if at, err := http.ParseTime(value); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	return 0
}

func errorReason(err error) string {
	var (
		rateLimitErr *RateLimitError
		networkErr   *NetworkError
		timeoutErr   *TimeoutError
		serverErr    *ServerError
		clientErr    *ClientError
		decodeErr    *DecodeError
	)
	switch {
	case errors.As(err, &rateLimitErr):
		return "rate_limited"
	case errors.As(err, &networkErr):
		return "network"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &serverErr):
		return "server_error"
	case errors.As(err, &clientErr):
		return "client_error"
	case errors.As(err, &decodeErr):
		return "decode_error"
	}
	return "other"
}

func truncate(s string) string {
	if len(s) > maxErrorBodyLength {
		return s[:maxErrorBodyLength]
	}
	return s
}

type Window struct {
	Start time.Time
	End   time.Time
}

// SplitWindow cuts [start, end] into consecutive windows no longer than maxRange.
func SplitWindow(start, end time.Time, maxRange time.Duration) []Window {
	if !start.Before(end) {
		return []Window{{Start: start, End: end}}
	}
	windows := []Window{}
	for from := start; from.Before(end); {
		to := utils.MinTime(end, from.Add(maxRange))
		windows = append(windows, Window{Start: from, End: to})
		from = to
	}
	return windows
}
