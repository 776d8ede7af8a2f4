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
	"time"

	"golang.org/x/time/rate"
)

type pageFetcher interface {
	FetchPage(ctx context.Context, filters Filters, startIndex, pageSize int) (Page, error)
}

// RecordStream is a pull based iterator over all records matching a filter.
//
//	stream := client.Stream(filters, 0)
//	for stream.Next(ctx) {
//		item := stream.Item()
//	}
//	if err := stream.Err(); err != nil {
//		...
//	}
type RecordStream struct {
	fetcher    pageFetcher
	filters    Filters
	pageSize   int
	maxResults int
	limiter    *rate.Limiter

	offset int
	total  int
	pages  int

	buf  []Item
	idx  int
	cur  Item
	done bool
	err  error
}

func newRecordStream(fetcher pageFetcher, filters Filters, pageSize, maxResults int, pageDelay time.Duration) *RecordStream {
	// the limiter spaces page requests by at least pageDelay, a slow page counts toward the wait
	limit := rate.Inf
	if pageDelay > 0 {
		limit = rate.Every(pageDelay)
	}
	return &RecordStream{
		fetcher:    fetcher,
		filters:    filters,
		pageSize:   pageSize,
		maxResults: maxResults,
		limiter:    rate.NewLimiter(limit, 1),
		total:      -1,
	}
}

// Next advances to the next record. It returns false once the stream is
// exhausted, failed or ctx is done.
func (s *RecordStream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.fail(err)
		return false
	}

	for s.idx >= len(s.buf) {
		if !s.fetchNextPage(ctx) {
			return false
		}
	}

	s.cur = s.buf[s.idx]
	s.idx++
	return true
}

func (s *RecordStream) Item() Item {
	return s.cur
}

func (s *RecordStream) Err() error {
	return s.err
}

// Total returns the number of matching records reported by the api, or -1 before the first page.
func (s *RecordStream) Total() int {
	return s.total
}

func (s *RecordStream) fail(err error) {
	s.err = err
	s.done = true
	s.buf = nil
}

func (s *RecordStream) fetchNextPage(ctx context.Context) bool {
	if s.total >= 0 && s.offset >= s.total {
		s.done = true
		return false
	}
	if s.maxResults > 0 && s.offset >= s.maxResults {
		s.done = true
		return false
	}

	size := s.pageSize
	if s.maxResults > 0 {
		size = min(size, s.maxResults-s.offset)
	}

	// the first wait returns immediately, every following one keeps the pages pageDelay apart
	if err := s.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.fail(ctxErr)
			return false
		}
		s.fail(err)
		return false
	}

	page, err := s.fetcher.FetchPage(ctx, s.filters, s.offset, size)
	if err != nil {
		s.fail(err)
		return false
	}
	s.pages++
	s.total = page.TotalResults

	items := page.Vulnerabilities
	if len(items) == 0 {
		// an empty page means exhaustion, not failure
		s.done = true
		return false
	}
	if s.maxResults > 0 && s.offset+len(items) > s.maxResults {
		items = items[:s.maxResults-s.offset]
	}

	s.offset += len(items)
	s.buf = items
	s.idx = 0
	return true
}
