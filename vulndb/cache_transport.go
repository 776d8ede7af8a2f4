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
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheTransport keeps successful GET responses in memory for a fixed time
type CacheTransport struct {
	cache *expirable.LRU[string, []byte]
	next  http.RoundTripper
}

func NewCacheTransport(next http.RoundTripper, cacheSize int, expiration time.Duration) *CacheTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &CacheTransport{
		cache: expirable.NewLRU[string, []byte](cacheSize, nil, expiration),
		next:  next,
	}
}

func (c *CacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.next.RoundTrip(req)
	}

	key := cacheKey(req)
	if val, ok := c.cache.Get(key); ok {
		slog.Debug("nvd cache hit", "url", req.URL.String())
		return responseFromBytes(val, req)
	}

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// only cache successful responses
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	v, err := httputil.DumpResponse(resp, true)
	if err != nil {
		slog.Error("could not dump response", "err", err)
		return resp, nil
	}
	resp.Body.Close()
	c.cache.Add(key, v)

	return responseFromBytes(v, req)
}

func responseFromBytes(v []byte, req *http.Request) (*http.Response, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(v)), req)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

// the api key is part of the key so a rotated key never reads responses fetched with the old one
func cacheKey(req *http.Request) string {
	key := req.URL.String()
	apiKey := req.Header.Get("apiKey")
	if apiKey == "" {
		return key
	}

	h := sha256.New()
	h.Write([]byte(key))
	h.Write([]byte(apiKey))
	return fmt.Sprintf("%x", h.Sum(nil))
}
