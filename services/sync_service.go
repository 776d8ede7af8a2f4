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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/monitoring"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/l3montree-dev/cvesync/vulndb"
	"github.com/pkg/errors"
)

var (
	ErrSyncCancelled  = errors.New("sync cancelled by request")
	ErrSyncSuperseded = errors.New("sync superseded by a forced sync")
	ErrShuttingDown   = errors.New("service is shutting down")
)

type activeRun struct {
	run      models.SyncRun
	counters models.SyncCounters
	cancel   context.CancelCauseFunc
	done     chan struct{}
}

// SyncService runs at most one sync at a time per instance.
// Trigger and Cancel are serialized by opMu, mu guards the active run.
type SyncService struct {
	runs          shared.SyncRunRepository
	vulnerability shared.VulnerabilityService
	client        shared.NVDClient
	broker        shared.PubSubBroker
	cfg           config.SyncConfig
	now           func() time.Time

	// finishPolicy retries the final status write, a row left running blocks every later sync
	finishPolicy vulndb.RetryPolicy
	sleep        vulndb.SleepFunc

	opMu   sync.Mutex
	mu     sync.Mutex
	active *activeRun
	wg     sync.WaitGroup
}

var _ shared.SyncService = &SyncService{}

// the broker may be nil, in that case no other instance is notified about completed runs
func NewSyncService(runs shared.SyncRunRepository, vulnerabilityService shared.VulnerabilityService, client shared.NVDClient, broker shared.PubSubBroker, cfg config.Config) *SyncService {
	return &SyncService{
		runs:          runs,
		vulnerability: vulnerabilityService,
		client:        client,
		broker:        broker,
		cfg:           cfg.Sync,
		now:           time.Now,
		finishPolicy: vulndb.RetryPolicy{
			MaxAttempts: 6,
			BaseDelay:   500 * time.Millisecond,
			Multiplier:  2,
			MaxDelay:    10 * time.Second,
			Retryable:   func(error) bool { return true },
		},
		sleep: vulndb.SleepContext,
	}
}

func (s *SyncService) Enabled() bool {
	return s.cfg.Enabled
}

func (s *SyncService) Trigger(ctx context.Context, syncType models.SyncType, force bool) (int64, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if syncType == "" {
		syncType = models.SyncTypeIncremental
	}
	if syncType != models.SyncTypeFull && syncType != models.SyncTypeIncremental {
		return 0, errors.Wrapf(shared.ErrInvalidFilter, "unknown sync type %q", syncType)
	}

	if !s.cfg.Enabled && !force {
		return 0, shared.ErrSyncDisabled
	}

	if _, running := s.Running(); running {
		if !force {
			return 0, shared.ErrSyncAlreadyRunning
		}
		slog.Info("forced sync requested, cancelling the active run")
		if _, err := s.cancelActive(ctx, ErrSyncSuperseded); err != nil {
			return 0, errors.Wrap(err, "could not cancel the active sync")
		}
	}

	run := models.SyncRun{
		SyncType:  syncType,
		Status:    models.SyncStatusRunning,
		StartedAt: s.now().UTC(),
	}
	if err := s.runs.Create(nil, &run); err != nil {
		return 0, err
	}

	// the run outlives the request that triggered it
	runCtx, cancel := context.WithCancelCause(context.Background())
	a := &activeRun{
		run:    run,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.active = a
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, a)

	slog.Info("sync started", "syncID", run.ID, "syncType", syncType, "force", force)
	return run.ID, nil
}

func (s *SyncService) Cancel(ctx context.Context) (bool, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.cancelActive(ctx, ErrSyncCancelled)
}

// cancelActive cancels the active run and blocks until it was finalized.
func (s *SyncService) cancelActive(ctx context.Context, cause error) (bool, error) {
	s.mu.Lock()
	a := s.active
	s.mu.Unlock()
	if a == nil {
		return false, nil
	}

	a.cancel(cause)
	select {
	case <-a.done:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Running returns a snapshot of the active run including its live counters.
func (s *SyncService) Running() (*models.SyncRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, false
	}
	run := s.active.run
	s.active.counters.Apply(&run)
	return &run, true
}

func (s *SyncService) ShouldRun(now time.Time) (bool, error) {
	if !s.cfg.Enabled {
		return false, nil
	}
	latest, err := s.runs.LatestCompleted()
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	finishedAt := latest.StartedAt
	if latest.CompletedAt != nil {
		finishedAt = *latest.CompletedAt
	}
	return now.Sub(finishedAt) >= s.cfg.Interval, nil
}

func (s *SyncService) Cleanup(olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	deleted, err := s.runs.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	monitoring.SyncHistoryCleanupDeleted.Add(float64(deleted))
	slog.Info("cleaned up sync history", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// RefreshCVE fetches a single record from upstream and stores it outside of any sync run.
func (s *SyncService) RefreshCVE(ctx context.Context, cveID string) (models.Vulnerability, error) {
	item, err := s.client.FetchCVE(ctx, cveID)
	if err != nil {
		if errors.Is(err, vulndb.ErrCVENotFound) {
			return models.Vulnerability{}, errors.Wrap(shared.ErrNotFound, err.Error())
		}
		return models.Vulnerability{}, errors.Wrapf(err, "could not fetch %s", cveID)
	}

	result, err := s.vulnerability.UpsertBatch(ctx, []vulndb.Item{item})
	if err != nil {
		return models.Vulnerability{}, err
	}
	if result.Failed > 0 {
		return models.Vulnerability{}, errors.Errorf("could not store %s", cveID)
	}
	if result.New > 0 || result.Updated > 0 {
		s.vulnerability.InvalidateStatistics()
	}
	slog.Info("refreshed cve", "cveID", item.CVE.ID, "new", result.New, "updated", result.Updated)
	return s.vulnerability.Read(item.CVE.ID)
}

// Wait blocks until every started run has been finalized.
func (s *SyncService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncService) Shutdown(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if _, err := s.cancelActive(ctx, ErrShuttingDown); err != nil {
		return err
	}
	return s.Wait(ctx)
}

func (s *SyncService) execute(ctx context.Context, a *activeRun) {
	defer s.wg.Done()
	monitoring.SyncRunning.Set(1)
	started := s.now()

	var (
		highWaterMark *time.Time
		runErr        error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.RecoverAndAlert("sync run panicked", r)
				runErr = fmt.Errorf("panic: %v", r)
			}
		}()
		highWaterMark, runErr = s.run(ctx, a)
	}()

	status := models.SyncStatusCompleted
	var message *string
	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		status = models.SyncStatusCancelled
		message = utils.Ptr(context.Cause(ctx).Error())
		highWaterMark = nil
	default:
		status = models.SyncStatusFailed
		message = utils.Ptr(runErr.Error())
		highWaterMark = nil
	}

	counters := s.snapshot(a)
	s.finish(a.run.ID, status, message, highWaterMark, counters)

	if status == models.SyncStatusCompleted {
		s.vulnerability.InvalidateStatistics()
		s.publishCompleted(a.run)
	}

	monitoring.SyncRunDuration.WithLabelValues(string(a.run.SyncType), string(status)).Observe(s.now().Sub(started).Minutes())
	monitoring.SyncRunsTotal.WithLabelValues(string(a.run.SyncType), string(status)).Inc()
	slog.Info("sync finished", "syncID", a.run.ID, "status", status, "processed", counters.Processed, "new", counters.New, "updated", counters.Updated, "err", runErr)

	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	monitoring.SyncRunning.Set(0)
	// done is closed only after the row is final
	close(a.done)
}

// finish writes the terminal status, retrying with backoff while the database is unavailable.
func (s *SyncService) finish(id int64, status models.SyncStatus, message *string, highWaterMark *time.Time, counters models.SyncCounters) {
	for attempt := 1; ; attempt++ {
		finished, err := s.runs.Finish(id, status, message, highWaterMark, counters)
		if err == nil {
			if !finished {
				slog.Warn("sync run was not running anymore when finalizing", "syncID", id)
			}
			return
		}

		delay, retry := s.finishPolicy.Next(attempt, err)
		if !retry {
			monitoring.Alert(fmt.Sprintf("could not finalize sync run %d after %d attempts", id, attempt), err)
			return
		}
		slog.Warn("could not finalize sync run, retrying", "syncID", id, "attempt", attempt, "delay", delay.String(), "err", err)
		// the run context is already done at this point
		_ = s.sleep(context.Background(), delay)
	}
}

func (s *SyncService) publishCompleted(run models.SyncRun) {
	if s.broker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.broker.Publish(ctx, shared.SyncCompletedChannel, map[string]any{
		"syncId":   run.ID,
		"syncType": string(run.SyncType),
	}); err != nil {
		slog.Warn("could not publish sync completion", "syncID", run.ID, "err", err)
	}
}

func (s *SyncService) run(ctx context.Context, a *activeRun) (*time.Time, error) {
	switch a.run.SyncType {
	case models.SyncTypeFull:
		return s.fullSync(ctx, a)
	default:
		return s.incrementalSync(ctx, a)
	}
}

func (s *SyncService) fullSync(ctx context.Context, a *activeRun) (*time.Time, error) {
	total, err := s.client.Probe(ctx, vulndb.Filters{})
	if err != nil {
		return nil, errors.Wrap(err, "could not probe total")
	}
	s.setTotal(a, total)

	var maxSeen *time.Time
	if err := s.consume(ctx, a, s.client.Stream(vulndb.Filters{}, 0), &maxSeen); err != nil {
		return nil, err
	}
	return maxSeen, nil
}

func (s *SyncService) incrementalSync(ctx context.Context, a *activeRun) (*time.Time, error) {
	end := s.now().UTC()
	start := end.Add(-s.cfg.IncrementalFallback)

	latest, err := s.runs.LatestCompleted()
	switch {
	case err == nil && latest.LastModifiedDate != nil:
		start = latest.LastModifiedDate.UTC()
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, errors.Wrap(err, "could not read the last high-water mark")
	}

	windows := vulndb.SplitWindow(start, end, vulndb.MaxDateRange)
	totals := make([]int, len(windows))
	total := 0
	for i, window := range windows {
		n, err := s.client.Probe(ctx, vulndb.LastModifiedBetween(window.Start, window.End))
		if err != nil {
			return nil, errors.Wrap(err, "could not probe total")
		}
		totals[i] = n
		total += n
	}
	s.setTotal(a, total)

	slog.Info("incremental sync window", "syncID", a.run.ID, "start", start, "end", end, "windows", len(windows), "total", total)
	if total == 0 {
		return utils.Ptr(utils.MaxTime(start, end)), nil
	}

	var maxSeen *time.Time
	for i, window := range windows {
		if totals[i] == 0 {
			continue
		}
		stream := s.client.Stream(vulndb.LastModifiedBetween(window.Start, window.End), 0)
		if err := s.consume(ctx, a, stream, &maxSeen); err != nil {
			return nil, err
		}
	}

	highWaterMark := start
	if maxSeen != nil {
		highWaterMark = utils.MaxTime(start, *maxSeen)
	}
	return &highWaterMark, nil
}

// consume reads the stream in batches and persists the progress after every batch.
func (s *SyncService) consume(ctx context.Context, a *activeRun, stream *vulndb.RecordStream, maxSeen **time.Time) error {
	batchSize := max(s.cfg.BatchSize, 1)
	batch := make([]vulndb.Item, 0, batchSize)

	flush := func() error {
		result, err := s.vulnerability.UpsertBatch(ctx, batch)
		batch = batch[:0]
		s.record(a, result)
		if result.MaxLastModified != nil && (*maxSeen == nil || result.MaxLastModified.After(**maxSeen)) {
			*maxSeen = result.MaxLastModified
		}
		if progressErr := s.runs.UpdateProgress(a.run.ID, s.snapshot(a)); progressErr != nil {
			slog.Warn("could not persist sync progress", "syncID", a.run.ID, "err", progressErr)
		}
		return err
	}

	for stream.Next(ctx) {
		batch = append(batch, stream.Item())
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}
	return context.Cause(ctx)
}

func (s *SyncService) setTotal(a *activeRun, total int) {
	s.mu.Lock()
	a.counters.Total = total
	counters := a.counters
	s.mu.Unlock()

	if err := s.runs.UpdateProgress(a.run.ID, counters); err != nil {
		slog.Warn("could not persist sync total", "syncID", a.run.ID, "err", err)
	}
}

func (s *SyncService) record(a *activeRun, result dtos.BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.counters.Processed += result.Processed
	a.counters.New += result.New
	a.counters.Updated += result.Updated
}

func (s *SyncService) snapshot(a *activeRun) models.SyncCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return a.counters
}
