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

package shared

import (
	"context"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/vulndb"
)

type DaemonRunner interface {
	Start()
	Stop()
	RunSync() error
	RunCleanup() error
}

type LeaderElector interface {
	IsLeader() bool
}

type ConfigRepository interface {
	Save(tx DB, config *models.Config) error
	Read(key string) (models.Config, error)
	Delete(tx DB, key string) error
	GetDB(tx DB) DB
}

type ConfigService interface {
	// retrieves the value for the given key and marshals it into v
	GetJSONConfig(key string, v any) error
	SetJSONConfig(key string, v any) error
	RemoveConfig(key string) error
}

type VulnerabilityRepository interface {
	GetDB(tx DB) DB
	Create(tx DB, vuln *models.Vulnerability) error
	Read(cveID string) (models.Vulnerability, error)
	Update(tx DB, cveID string, updates map[string]any) (models.Vulnerability, bool, error)
	Delete(tx DB, cveID string) (bool, error)
	List(filter dtos.VulnerabilityFilter, pageInfo PageInfo) (Paged[models.Vulnerability], error)
	Count(filter dtos.VulnerabilityFilter) (int64, error)
	Search(term string, limit int) ([]models.Vulnerability, error)
	// Upsert inserts the record or overwrites the stored one if the incoming record is strictly newer.
	Upsert(ctx context.Context, tx DB, vuln *models.Vulnerability) (string, models.UpsertOutcome, error)
	Statistics(now time.Time) (dtos.VulnerabilityStatistics, error)
	Ping(ctx context.Context) error
}

type SyncRunRepository interface {
	GetDB(tx DB) DB
	Create(tx DB, run *models.SyncRun) error
	Read(id int64) (models.SyncRun, error)
	Latest() (models.SyncRun, error)
	// LatestCompleted returns the newest completed run that carries a high-water mark.
	LatestCompleted() (models.SyncRun, error)
	History(limit int) ([]models.SyncRun, error)
	Running() (models.SyncRun, error)
	UpdateProgress(id int64, counters models.SyncCounters) error
	// Finish moves a running run into a terminal state. It reports false if the run was not running anymore.
	Finish(id int64, status models.SyncStatus, errorMessage *string, highWaterMark *time.Time, counters models.SyncCounters) (bool, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
	MarkStaleRunning(message string) (int64, error)
}

type NVDClient interface {
	FetchPage(ctx context.Context, filters vulndb.Filters, startIndex, pageSize int) (vulndb.Page, error)
	Stream(filters vulndb.Filters, maxResults int) *vulndb.RecordStream
	Probe(ctx context.Context, filters vulndb.Filters) (int, error)
	FetchCVE(ctx context.Context, cveID string) (vulndb.Item, error)
	FetchRecent(ctx context.Context, days int) ([]vulndb.Item, error)
	Ping(ctx context.Context) error
}

type VulnerabilityService interface {
	Create(req dtos.VulnerabilityCreateRequest) (models.Vulnerability, error)
	Read(cveID string) (models.Vulnerability, error)
	Update(cveID string, req dtos.VulnerabilityUpdateRequest) (models.Vulnerability, error)
	Delete(cveID string) error
	List(filter dtos.VulnerabilityFilter, pageInfo PageInfo) (Paged[models.Vulnerability], error)
	Count(filter dtos.VulnerabilityFilter) (int64, error)
	Search(term string, limit int) ([]models.Vulnerability, error)
	ByYear(year int, pageInfo PageInfo) (Paged[models.Vulnerability], error)
	ByScoreRange(minScore, maxScore float64, pageInfo PageInfo) (Paged[models.Vulnerability], error)
	RecentlyModified(days int, pageInfo PageInfo) (Paged[models.Vulnerability], error)
	Statistics() (dtos.VulnerabilityStatistics, error)
	InvalidateStatistics()
	// UpsertBatch normalizes and stores a batch of upstream records. Failing records are logged and skipped.
	UpsertBatch(ctx context.Context, items []vulndb.Item) (dtos.BatchResult, error)
	Ping(ctx context.Context) error
}

type SyncService interface {
	Trigger(ctx context.Context, syncType models.SyncType, force bool) (int64, error)
	Cancel(ctx context.Context) (bool, error)
	Running() (*models.SyncRun, bool)
	Enabled() bool
	ShouldRun(now time.Time) (bool, error)
	Cleanup(olderThan time.Duration) (int64, error)
	RefreshCVE(ctx context.Context, cveID string) (models.Vulnerability, error)
	Wait(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type PubSubChannel string

const (
	// SyncCompletedChannel carries {syncId, syncType} after a sync run completed.
	SyncCompletedChannel PubSubChannel = "cvesync_sync_completed"
)

type PubSubBroker interface {
	Publish(ctx context.Context, channel PubSubChannel, payload map[string]any) error
	// Subscribe delivers every message published by other instances until ctx is done.
	Subscribe(ctx context.Context, channel PubSubChannel) (<-chan map[string]any, error)
}
