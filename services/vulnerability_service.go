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

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/monitoring"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/l3montree-dev/cvesync/vulndb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const statisticsCacheKey = "statistics"

type VulnerabilityService struct {
	repository  shared.VulnerabilityRepository
	concurrency int

	statsCache *expirable.LRU[string, dtos.VulnerabilityStatistics]
	statsGroup singleflight.Group
	now        func() time.Time
}

var _ shared.VulnerabilityService = &VulnerabilityService{}

func NewVulnerabilityService(repository shared.VulnerabilityRepository, cfg config.Config) *VulnerabilityService {
	ttl := cfg.Sync.StatisticsCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &VulnerabilityService{
		repository:  repository,
		concurrency: max(cfg.Sync.MaxConcurrentBatches, 1),
		statsCache:  expirable.NewLRU[string, dtos.VulnerabilityStatistics](1, nil, ttl),
		now:         time.Now,
	}
}

func (s *VulnerabilityService) Create(req dtos.VulnerabilityCreateRequest) (models.Vulnerability, error) {
	vuln := req.ToModel()
	if err := s.repository.Create(nil, &vuln); err != nil {
		return models.Vulnerability{}, err
	}
	s.InvalidateStatistics()
	return vuln, nil
}

func (s *VulnerabilityService) Read(cveID string) (models.Vulnerability, error) {
	return s.repository.Read(utils.NormalizeCVEID(cveID))
}

func (s *VulnerabilityService) Update(cveID string, req dtos.VulnerabilityUpdateRequest) (models.Vulnerability, error) {
	cveID = utils.NormalizeCVEID(cveID)
	updates := req.ToUpdates()
	if len(updates) == 0 {
		// nothing to write, still report a missing record
		return s.repository.Read(cveID)
	}

	vuln, found, err := s.repository.Update(nil, cveID, updates)
	if err != nil {
		return models.Vulnerability{}, err
	}
	if !found {
		return models.Vulnerability{}, errors.Wrap(shared.ErrNotFound, cveID)
	}
	s.InvalidateStatistics()
	return vuln, nil
}

func (s *VulnerabilityService) Delete(cveID string) error {
	cveID = utils.NormalizeCVEID(cveID)
	deleted, err := s.repository.Delete(nil, cveID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.Wrap(shared.ErrNotFound, cveID)
	}
	s.InvalidateStatistics()
	return nil
}

func (s *VulnerabilityService) List(filter dtos.VulnerabilityFilter, pageInfo shared.PageInfo) (shared.Paged[models.Vulnerability], error) {
	filter = filter.Normalize()
	if filter.HasInvalidScoreRange() {
		return shared.Paged[models.Vulnerability]{}, errors.Wrap(shared.ErrInvalidFilter, "minScore must not be greater than maxScore")
	}
	return s.repository.List(filter, pageInfo)
}

func (s *VulnerabilityService) Count(filter dtos.VulnerabilityFilter) (int64, error) {
	filter = filter.Normalize()
	if filter.HasInvalidScoreRange() {
		return 0, errors.Wrap(shared.ErrInvalidFilter, "minScore must not be greater than maxScore")
	}
	return s.repository.Count(filter)
}

func (s *VulnerabilityService) Search(term string, limit int) ([]models.Vulnerability, error) {
	return s.repository.Search(term, utils.Clamp(limit, 1, 1000))
}

func (s *VulnerabilityService) ByYear(year int, pageInfo shared.PageInfo) (shared.Paged[models.Vulnerability], error) {
	return s.List(dtos.VulnerabilityFilter{Year: &year}, pageInfo)
}

func (s *VulnerabilityService) ByScoreRange(minScore, maxScore float64, pageInfo shared.PageInfo) (shared.Paged[models.Vulnerability], error) {
	return s.List(dtos.VulnerabilityFilter{
		MinScore:  &minScore,
		MaxScore:  &maxScore,
		SortBy:    "cvss_v3_score",
		SortOrder: "desc",
	}, pageInfo)
}

func (s *VulnerabilityService) RecentlyModified(days int, pageInfo shared.PageInfo) (shared.Paged[models.Vulnerability], error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.List(dtos.VulnerabilityFilter{ModifiedSince: &since}, pageInfo)
}

// Statistics are cached for the configured ttl. Concurrent misses share a single query.
func (s *VulnerabilityService) Statistics() (dtos.VulnerabilityStatistics, error) {
	if stats, ok := s.statsCache.Get(statisticsCacheKey); ok {
		return stats, nil
	}

	v, err, _ := s.statsGroup.Do(statisticsCacheKey, func() (any, error) {
		stats, err := s.repository.Statistics(s.now())
		if err != nil {
			return nil, err
		}
		s.statsCache.Add(statisticsCacheKey, stats)
		return stats, nil
	})
	if err != nil {
		return dtos.VulnerabilityStatistics{}, err
	}
	return v.(dtos.VulnerabilityStatistics), nil
}

func (s *VulnerabilityService) InvalidateStatistics() {
	s.statsCache.Purge()
}

func (s *VulnerabilityService) UpsertBatch(ctx context.Context, items []vulndb.Item) (dtos.BatchResult, error) {
	var (
		mu     sync.Mutex
		result dtos.BatchResult
	)

	g := errgroup.Group{}
	g.SetLimit(s.concurrency)

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			vuln := vulndb.Normalize(item)
			outcome, err := s.upsertOne(ctx, &vuln)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			if err != nil {
				result.Failed++
				monitoring.SyncRecordsTotal.WithLabelValues("failed").Inc()
				slog.Warn("could not store vulnerability, skipping", "cve", item.CVE.ID, "err", err)
				return nil
			}
			switch outcome {
			case models.UpsertCreated:
				result.New++
			case models.UpsertUpdated:
				result.Updated++
			}
			monitoring.SyncRecordsTotal.WithLabelValues(outcome.String()).Inc()
			result.Observe(vuln.LastModified)
			return nil
		})
	}
	// upserts never fail the group
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, context.Cause(ctx)
	}
	return result, nil
}

func (s *VulnerabilityService) upsertOne(ctx context.Context, vuln *models.Vulnerability) (models.UpsertOutcome, error) {
	if !shared.IsValidCVEID(vuln.CVEID) {
		return models.UpsertUnchanged, errors.Errorf("invalid cve id %q", vuln.CVEID)
	}
	_, outcome, err := s.repository.Upsert(ctx, nil, vuln)
	return outcome, err
}

func (s *VulnerabilityService) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}
