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
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/stretchr/testify/assert"
)

type fakeNVD struct {
	mu       sync.Mutex
	items    []map[string]any
	total    int
	requests []*http.Request
	// responders answer the first requests before the page logic kicks in
	responders []func(w http.ResponseWriter)
}

func (f *fakeNVD) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	var responder func(w http.ResponseWriter)
	if len(f.responders) > 0 {
		responder = f.responders[0]
		f.responders = f.responders[1:]
	}
	f.mu.Unlock()

	if responder != nil {
		responder(w)
		return
	}

	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("startIndex"))
	size, _ := strconv.Atoi(q.Get("resultsPerPage"))

	page := []map[string]any{}
	for i := start; i < len(f.items) && i < start+size; i++ {
		page = append(page, f.items[i])
	}
	total := f.total
	if total == 0 {
		total = len(f.items)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"resultsPerPage":  len(page),
		"startIndex":      start,
		"totalResults":    total,
		"format":          "NVD_CVE",
		"version":         "2.0",
		"timestamp":       "2024-01-01T00:00:00.000",
		"vulnerabilities": page,
	})
}

func (f *fakeNVD) queries() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]url.Values, len(f.requests))
	for i, r := range f.requests {
		res[i] = r.URL.Query()
	}
	return res
}

func testItem(id string, lastModified string) map[string]any {
	return map[string]any{
		"cve": map[string]any{
			"id":               id,
			"sourceIdentifier": "nvd@nist.gov",
			"published":        "2024-01-01T00:00:00.000",
			"lastModified":     lastModified,
			"vulnStatus":       "Analyzed",
			"descriptions": []map[string]any{
				{"lang": "en", "value": "description of " + id},
			},
		},
	}
}

func testItems(n int) []map[string]any {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = testItem(fmt.Sprintf("CVE-2024-%04d", i+1), "2024-02-01T00:00:00.000")
	}
	return items
}

type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.Handler, pageSize int) (*NVDClient, *recordingSleep) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sleeper := &recordingSleep{}
	client := NewNVDClient(config.NVDConfig{
		BaseURL:        srv.URL,
		APIKey:         "secret",
		RateLimitDelay: time.Second,
		MaxRetries:     3,
		ResultsPerPage: pageSize,
		Timeout:        5 * time.Second,
	}, WithSleep(sleeper.sleep), WithPageDelay(0))
	return client, sleeper
}

func collect(t *testing.T, stream *RecordStream) []Item {
	t.Helper()
	items := []Item{}
	for stream.Next(context.Background()) {
		items = append(items, stream.Item())
	}
	return items
}

func TestStream(t *testing.T) {
	t.Run("should yield exactly totalResults records across pages", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(3)}
		client, _ := newTestClient(t, fake, 2)

		stream := client.Stream(Filters{}, 0)
		items := collect(t, stream)

		assert.NoError(t, stream.Err())
		assert.Len(t, items, 3)
		assert.Equal(t, "CVE-2024-0001", items[0].CVE.ID)
		assert.Equal(t, "CVE-2024-0003", items[2].CVE.ID)

		queries := fake.queries()
		assert.Len(t, queries, 2)
		assert.Equal(t, "0", queries[0].Get("startIndex"))
		assert.Equal(t, "2", queries[0].Get("resultsPerPage"))
		assert.Equal(t, "2", queries[1].Get("startIndex"))
		assert.Equal(t, 3, stream.Total())
	})

	t.Run("should treat an empty page as exhaustion", func(t *testing.T) {
		fake := &fakeNVD{items: nil, total: 5}
		client, _ := newTestClient(t, fake, 2)

		stream := client.Stream(Filters{}, 0)
		items := collect(t, stream)

		assert.NoError(t, stream.Err())
		assert.Empty(t, items)
		assert.Len(t, fake.queries(), 1)
	})

	t.Run("should stop at maxResults and shrink the last page", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(10)}
		client, _ := newTestClient(t, fake, 2)

		stream := client.Stream(Filters{}, 3)
		items := collect(t, stream)

		assert.NoError(t, stream.Err())
		assert.Len(t, items, 3)
		queries := fake.queries()
		assert.Len(t, queries, 2)
		assert.Equal(t, "1", queries[1].Get("resultsPerPage"))
	})

	t.Run("should restart from offset zero when called again", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(2)}
		client, _ := newTestClient(t, fake, 2)

		assert.Len(t, collect(t, client.Stream(Filters{}, 0)), 2)
		assert.Len(t, collect(t, client.Stream(Filters{}, 0)), 2)
		queries := fake.queries()
		assert.Equal(t, "0", queries[1].Get("startIndex"))
	})

	t.Run("should end with the context error when cancelled", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(4)}
		client, _ := newTestClient(t, fake, 2)

		ctx, cancel := context.WithCancel(context.Background())
		stream := client.Stream(Filters{}, 0)
		assert.True(t, stream.Next(ctx))
		cancel()
		assert.False(t, stream.Next(ctx))
		assert.ErrorIs(t, stream.Err(), context.Canceled)
	})

	t.Run("should surface fetch errors through Err", func(t *testing.T) {
		fake := &fakeNVD{responders: []func(w http.ResponseWriter){
			func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadRequest) },
		}}
		client, _ := newTestClient(t, fake, 2)

		stream := client.Stream(Filters{}, 0)
		assert.False(t, stream.Next(context.Background()))
		var clientErr *ClientError
		assert.ErrorAs(t, stream.Err(), &clientErr)
	})
}

func TestFetchPage(t *testing.T) {
	t.Run("should send the api key, user agent and accept header", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(1)}
		client, _ := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		assert.NoError(t, err)

		fake.mu.Lock()
		req := fake.requests[0]
		fake.mu.Unlock()
		assert.Equal(t, "secret", req.Header.Get("apiKey"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.Equal(t, "cvesync/"+config.Version, req.Header.Get("User-Agent"))
	})

	t.Run("should clamp the page size to the api maximum", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(1)}
		client, _ := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 5000)
		assert.NoError(t, err)
		assert.Equal(t, "2000", fake.queries()[0].Get("resultsPerPage"))
	})

	t.Run("should retry server errors with exponential backoff", func(t *testing.T) {
		unavailable := func(w http.ResponseWriter) { w.WriteHeader(http.StatusServiceUnavailable) }
		fake := &fakeNVD{items: testItems(1), responders: []func(w http.ResponseWriter){unavailable, unavailable}}
		client, sleeper := newTestClient(t, fake, 10)

		page, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		assert.NoError(t, err)
		assert.Len(t, page.Vulnerabilities, 1)
		assert.Len(t, fake.queries(), 3)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
	})

	t.Run("should honor the server provided delay on rate limits", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(1), responders: []func(w http.ResponseWriter){
			func(w http.ResponseWriter) {
				w.Header().Set("X-RateLimit-Reset", "7")
				w.WriteHeader(http.StatusForbidden)
			},
		}}
		client, sleeper := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, []time.Duration{7 * time.Second}, sleeper.delays)
	})

	t.Run("should return a RateLimitError once the attempts are spent", func(t *testing.T) {
		tooMany := func(w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) }
		fake := &fakeNVD{responders: []func(w http.ResponseWriter){tooMany, tooMany, tooMany, tooMany}}
		client, _ := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		var rateLimitErr *RateLimitError
		assert.ErrorAs(t, err, &rateLimitErr)
		assert.Equal(t, 4, rateLimitErr.Attempts)
		assert.Len(t, fake.queries(), 4)
	})

	t.Run("should fail immediately on other client errors", func(t *testing.T) {
		fake := &fakeNVD{responders: []func(w http.ResponseWriter){
			func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("not here"))
			},
		}}
		client, sleeper := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		var clientErr *ClientError
		assert.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
		assert.Equal(t, "not here", clientErr.Body)
		assert.Len(t, fake.queries(), 1)
		assert.Empty(t, sleeper.delays)
	})

	t.Run("should not retry undecodable bodies", func(t *testing.T) {
		fake := &fakeNVD{responders: []func(w http.ResponseWriter){
			func(w http.ResponseWriter) { _, _ = w.Write([]byte("{not json")) },
		}}
		client, _ := newTestClient(t, fake, 10)

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr)
		assert.Len(t, fake.queries(), 1)
	})

	t.Run("should keep the page when a single record has malformed fields", func(t *testing.T) {
		malformed := testItem("CVE-2024-0002", "2024-02-01T00:00:00.000")
		malformed["cve"].(map[string]any)["published"] = 20240101
		fake := &fakeNVD{items: []map[string]any{testItem("CVE-2024-0001", "2024-02-01T00:00:00.000"), malformed}}
		client, _ := newTestClient(t, fake, 10)

		page, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		assert.NoError(t, err)
		assert.Len(t, page.Vulnerabilities, 2)

		assert.Equal(t, "2024-01-01T00:00:00.000", page.Vulnerabilities[0].CVE.Published)

		second := page.Vulnerabilities[1]
		assert.Equal(t, "CVE-2024-0002", second.CVE.ID)
		assert.Empty(t, second.CVE.Published)
		assert.Equal(t, "2024-02-01T00:00:00.000", second.CVE.LastModified)
		assert.NotEmpty(t, second.CVE.Descriptions)

		vuln := Normalize(second)
		assert.Nil(t, vuln.Published)
		assert.NotNil(t, vuln.LastModified)
	})

	t.Run("should keep an entry that is not an object as an empty record", func(t *testing.T) {
		fake := &fakeNVD{responders: []func(w http.ResponseWriter){
			func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"totalResults":2,"vulnerabilities":[42,{"cve":{"id":"CVE-2024-0001"}}]}`))
			},
		}}
		client, _ := newTestClient(t, fake, 10)

		page, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		assert.NoError(t, err)
		assert.Len(t, page.Vulnerabilities, 2)
		assert.Empty(t, page.Vulnerabilities[0].CVE.ID)
		assert.Equal(t, "CVE-2024-0001", page.Vulnerabilities[1].CVE.ID)
	})

	t.Run("should return a TimeoutError when the server answers too slowly", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		sleeper := &recordingSleep{}
		client := NewNVDClient(config.NVDConfig{BaseURL: srv.URL, MaxRetries: 1, ResultsPerPage: 10, Timeout: 50 * time.Millisecond}, WithSleep(sleeper.sleep))

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		var timeoutErr *TimeoutError
		assert.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, 2, timeoutErr.Attempts)
		assert.Len(t, sleeper.delays, 1)
	})

	t.Run("should return a NetworkError when the server is gone", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		sleeper := &recordingSleep{}
		client := NewNVDClient(config.NVDConfig{BaseURL: srv.URL, MaxRetries: 1, ResultsPerPage: 10, Timeout: time.Second}, WithSleep(sleeper.sleep))

		_, err := client.FetchPage(context.Background(), Filters{}, 0, 0)
		var networkErr *NetworkError
		assert.ErrorAs(t, err, &networkErr)
		assert.Equal(t, 2, networkErr.Attempts)
	})
}

func TestProbeAndFetchCVE(t *testing.T) {
	t.Run("probe should request a single record and return the total", func(t *testing.T) {
		fake := &fakeNVD{items: testItems(1), total: 42}
		client, _ := newTestClient(t, fake, 10)

		total, err := client.Probe(context.Background(), Filters{})
		assert.NoError(t, err)
		assert.Equal(t, 42, total)
		assert.Equal(t, "1", fake.queries()[0].Get("resultsPerPage"))
	})

	t.Run("fetch cve should uppercase the identifier", func(t *testing.T) {
		fake := &fakeNVD{items: []map[string]any{testItem("CVE-2024-1234", "2024-02-01T00:00:00.000")}}
		client, _ := newTestClient(t, fake, 10)

		item, err := client.FetchCVE(context.Background(), "cve-2024-1234")
		assert.NoError(t, err)
		assert.Equal(t, "CVE-2024-1234", item.CVE.ID)
		assert.Equal(t, "CVE-2024-1234", fake.queries()[0].Get("cveId"))
	})

	t.Run("fetch cve should report not found on an empty result", func(t *testing.T) {
		fake := &fakeNVD{}
		client, _ := newTestClient(t, fake, 10)

		_, err := client.FetchCVE(context.Background(), "CVE-2024-9999")
		assert.True(t, errors.Is(err, ErrCVENotFound))
	})

	t.Run("fetch cve should serve repeated lookups from the cache", func(t *testing.T) {
		fake := &fakeNVD{items: []map[string]any{testItem("CVE-2024-1234", "2024-02-01T00:00:00.000")}}
		srv := httptest.NewServer(fake)
		t.Cleanup(srv.Close)
		client := NewNVDClient(config.NVDConfig{BaseURL: srv.URL, ResultsPerPage: 10, Timeout: time.Second, LookupCacheTTL: time.Minute})

		for range 3 {
			item, err := client.FetchCVE(context.Background(), "CVE-2024-1234")
			assert.NoError(t, err)
			assert.Equal(t, "CVE-2024-1234", item.CVE.ID)
		}
		assert.Len(t, fake.queries(), 1)

		// pages are never cached
		_, err := client.Probe(context.Background(), Filters{})
		assert.NoError(t, err)
		_, err = client.Probe(context.Background(), Filters{})
		assert.NoError(t, err)
		assert.Len(t, fake.queries(), 3)
	})
}

func TestFiltersValues(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("cet", 3600))
	yes := true

	q := Filters{
		LastModStartDate: &start,
		LastModEndDate:   &end,
		CVEID:            "cve-2024-1",
		CVSSV3Severity:   "high",
		KeywordSearch:    "openssl",
		HasKev:           &yes,
	}.Values()

	assert.Equal(t, "2024-01-01T12:00:00.000+00:00", q.Get("lastModStartDate"))
	assert.Equal(t, "2024-02-01T11:00:00.000+00:00", q.Get("lastModEndDate"))
	assert.Equal(t, "CVE-2024-1", q.Get("cveId"))
	assert.Equal(t, "HIGH", q.Get("cvssV3Severity"))
	assert.Equal(t, "openssl", q.Get("keywordSearch"))
	assert.Equal(t, "true", q.Get("hasKev"))
	assert.False(t, q.Has("hasOval"))
	assert.False(t, q.Has("keywordExactMatch"))
}

func TestSplitWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should keep short windows intact", func(t *testing.T) {
		end := start.Add(24 * time.Hour)
		assert.Equal(t, []Window{{Start: start, End: end}}, SplitWindow(start, end, MaxDateRange))
	})

	t.Run("should split long windows into consecutive parts", func(t *testing.T) {
		end := start.Add(300 * 24 * time.Hour)
		windows := SplitWindow(start, end, MaxDateRange)
		assert.Len(t, windows, 3)
		assert.Equal(t, start, windows[0].Start)
		assert.Equal(t, windows[0].End, windows[1].Start)
		assert.Equal(t, end, windows[2].End)
		for _, w := range windows {
			assert.LessOrEqual(t, w.End.Sub(w.Start), MaxDateRange)
		}
	})
}
