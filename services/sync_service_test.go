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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/mocks"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/l3montree-dev/cvesync/vulndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func nvdItem(id string, lastModified string) map[string]any {
	return map[string]any{
		"cve": map[string]any{
			"id":           id,
			"published":    "2024-01-01T00:00:00.000",
			"lastModified": lastModified,
			"vulnStatus":   "Analyzed",
			"descriptions": []map[string]any{{"lang": "en", "value": "description of " + id}},
		},
	}
}

// servePages answers like the nvd api with the given items.
func servePages(items []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, _ := strconv.Atoi(q.Get("startIndex"))
		size, _ := strconv.Atoi(q.Get("resultsPerPage"))
		page := []map[string]any{}
		for i := start; i < len(items) && i < start+size; i++ {
			page = append(page, items[i])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultsPerPage":  len(page),
			"startIndex":      start,
			"totalResults":    len(items),
			"vulnerabilities": page,
		})
	}
}

// blockUntilCancelled never answers before the client gives up.
func blockUntilCancelled(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}
}

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.NVD.BaseURL = baseURL
	cfg.NVD.ResultsPerPage = 2
	cfg.NVD.RateLimitDelay = 0
	cfg.NVD.MaxRetries = 0
	cfg.Sync.Enabled = true
	cfg.Sync.BatchSize = 2
	return cfg
}

func newTestSyncService(t *testing.T, handler http.Handler) (*SyncService, *mocks.SyncRunRepository, *mocks.VulnerabilityRepository) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	runs := mocks.NewSyncRunRepository(t)
	vulnRepository := mocks.NewVulnerabilityRepository(t)
	client := vulndb.NewNVDClient(cfg.NVD, vulndb.WithPageDelay(0))

	s := NewSyncService(runs, NewVulnerabilityService(vulnRepository, cfg), client, nil, cfg)
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return s, runs, vulnRepository
}

func expectCreate(runs *mocks.SyncRunRepository, id int64) {
	runs.On("Create", mock.Anything, mock.AnythingOfType("*models.SyncRun")).Run(func(args mock.Arguments) {
		run := args.Get(1).(*models.SyncRun)
		run.ID = id
	}).Return(nil).Once()
}

func messageContains(s string) any {
	return mock.MatchedBy(func(m *string) bool {
		return m != nil && strings.Contains(*m, s)
	})
}

func sameTime(expected time.Time) any {
	return mock.MatchedBy(func(actual *time.Time) bool {
		return actual != nil && actual.Equal(expected)
	})
}

func waitFor(t *testing.T, s *SyncService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, s.Wait(ctx))
}

func TestSyncServiceFullSync(t *testing.T) {
	t.Run("should move a run from running to completed and process every record", func(t *testing.T) {
		items := []map[string]any{
			nvdItem("CVE-2024-0001", "2024-02-01T00:00:00.000"),
			nvdItem("CVE-2024-0002", "2024-02-03T00:00:00.000"),
			nvdItem("CVE-2024-0003", "2024-02-02T00:00:00.000"),
		}
		s, runs, vulnRepository := newTestSyncService(t, servePages(items))

		expectCreate(runs, 1)
		runs.On("UpdateProgress", int64(1), mock.Anything).Return(nil)
		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Vulnerability")).Return("", models.UpsertCreated, nil).Times(3)
		runs.On("Finish", int64(1), models.SyncStatusCompleted, (*string)(nil), mock.MatchedBy(func(hwm *time.Time) bool {
			return hwm != nil && hwm.Equal(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
		}), models.SyncCounters{Total: 3, Processed: 3, New: 3}).Return(true, nil).Once()

		id, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)

		waitFor(t, s)
		_, running := s.Running()
		assert.False(t, running)
	})

	t.Run("should mark the run failed on upstream errors", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		expectCreate(runs, 7)
		runs.On("Finish", int64(7), models.SyncStatusFailed, messageContains("404"), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		waitFor(t, s)
	})

	t.Run("should notify other instances only about completed runs", func(t *testing.T) {
		s, runs, vulnRepository := newTestSyncService(t, servePages([]map[string]any{
			nvdItem("CVE-2024-0001", "2024-02-01T00:00:00.000"),
		}))
		broker := mocks.NewPubSubBroker(t)
		s.broker = broker

		expectCreate(runs, 2)
		runs.On("UpdateProgress", int64(2), mock.Anything).Return(nil)
		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return("", models.UpsertCreated, nil).Once()
		runs.On("Finish", int64(2), models.SyncStatusCompleted, (*string)(nil), mock.Anything, mock.Anything).Return(true, nil).Once()
		broker.On("Publish", mock.Anything, shared.SyncCompletedChannel, map[string]any{
			"syncId":   int64(2),
			"syncType": "full",
		}).Return(fmt.Errorf("connection refused")).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		waitFor(t, s)
	})
}

func TestSyncServiceIncrementalSync(t *testing.T) {
	t.Run("should complete without records and advance the high-water mark to the window end", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		previous := now.Add(-time.Hour)
		expectCreate(runs, 2)
		runs.On("LatestCompleted").Return(models.SyncRun{ID: 1, Status: models.SyncStatusCompleted, LastModifiedDate: &previous}, nil)
		runs.On("UpdateProgress", int64(2), models.SyncCounters{}).Return(nil)
		runs.On("Finish", int64(2), models.SyncStatusCompleted, (*string)(nil), sameTime(now), models.SyncCounters{}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), "", false)
		assert.NoError(t, err)
		waitFor(t, s)
	})

	t.Run("should keep the window start as high-water mark when only older records arrive", func(t *testing.T) {
		items := []map[string]any{nvdItem("CVE-2024-0001", "2024-05-01T00:00:00.000")}
		s, runs, vulnRepository := newTestSyncService(t, servePages(items))
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		previous := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
		expectCreate(runs, 3)
		runs.On("LatestCompleted").Return(models.SyncRun{ID: 1, Status: models.SyncStatusCompleted, LastModifiedDate: &previous}, nil)
		runs.On("UpdateProgress", int64(3), mock.Anything).Return(nil)
		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return("CVE-2024-0001", models.UpsertUnchanged, nil).Once()
		runs.On("Finish", int64(3), models.SyncStatusCompleted, (*string)(nil), sameTime(previous), models.SyncCounters{Total: 1, Processed: 1}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeIncremental, false)
		assert.NoError(t, err)
		waitFor(t, s)
	})

	t.Run("should fall back to the configured window without a previous run", func(t *testing.T) {
		var from string
		s, runs, _ := newTestSyncService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			from = r.URL.Query().Get("lastModStartDate")
			servePages(nil)(w, r)
		}))
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		expectCreate(runs, 4)
		runs.On("LatestCompleted").Return(models.SyncRun{}, shared.ErrNotFound)
		runs.On("UpdateProgress", int64(4), mock.Anything).Return(nil)
		runs.On("Finish", int64(4), models.SyncStatusCompleted, (*string)(nil), sameTime(now), models.SyncCounters{}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeIncremental, false)
		assert.NoError(t, err)
		waitFor(t, s)
		assert.Equal(t, "2024-05-25T12:00:00.000+00:00", from)
	})
}

func TestSyncServiceIncrementalWindows(t *testing.T) {
	t.Run("should count every window in order and only stream the ones with records", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		previous := now.Add(-250 * 24 * time.Hour)
		windows := vulndb.SplitWindow(previous, now, vulndb.MaxDateRange)
		assert.Len(t, windows, 3)

		itemsByWindow := map[string][]map[string]any{
			utils.FormatNVDTime(windows[0].Start): {nvdItem("CVE-2023-0001", "2023-10-01T00:00:00.000")},
			utils.FormatNVDTime(windows[2].Start): {
				nvdItem("CVE-2024-0001", "2024-05-25T00:00:00.000"),
				nvdItem("CVE-2024-0002", "2024-05-30T06:00:00.000"),
			},
		}

		type request struct {
			start string
			size  string
		}
		var (
			mu       sync.Mutex
			requests []request
		)
		s, runs, vulnRepository := newTestSyncService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			mu.Lock()
			requests = append(requests, request{start: q.Get("lastModStartDate"), size: q.Get("resultsPerPage")})
			mu.Unlock()
			servePages(itemsByWindow[q.Get("lastModStartDate")])(w, r)
		}))
		s.now = func() time.Time { return now }

		expectCreate(runs, 6)
		runs.On("LatestCompleted").Return(models.SyncRun{ID: 5, Status: models.SyncStatusCompleted, LastModifiedDate: &previous}, nil)
		runs.On("UpdateProgress", int64(6), mock.Anything).Return(nil)
		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return("", models.UpsertCreated, nil).Times(3)
		runs.On("Finish", int64(6), models.SyncStatusCompleted, (*string)(nil), sameTime(time.Date(2024, 5, 30, 6, 0, 0, 0, time.UTC)), models.SyncCounters{Total: 3, Processed: 3, New: 3}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeIncremental, false)
		assert.NoError(t, err)
		waitFor(t, s)

		first := utils.FormatNVDTime(windows[0].Start)
		second := utils.FormatNVDTime(windows[1].Start)
		third := utils.FormatNVDTime(windows[2].Start)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []request{
			{start: first, size: "1"},
			{start: second, size: "1"},
			{start: third, size: "1"},
			{start: first, size: "2"},
			{start: third, size: "2"},
		}, requests)
	})
}

func TestSyncServiceFinalize(t *testing.T) {
	t.Run("should retry the final status write until the database accepts it", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		var delays []time.Duration
		s.sleep = func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}

		expectCreate(runs, 9)
		runs.On("UpdateProgress", int64(9), mock.Anything).Return(nil)
		runs.On("Finish", int64(9), models.SyncStatusCompleted, (*string)(nil), (*time.Time)(nil), models.SyncCounters{}).Return(false, fmt.Errorf("connection reset by peer")).Once()
		runs.On("Finish", int64(9), models.SyncStatusCompleted, (*string)(nil), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		waitFor(t, s)

		assert.Equal(t, []time.Duration{s.finishPolicy.BaseDelay}, delays)
		runs.AssertNumberOfCalls(t, "Finish", 2)

		// the next run starts normally once the row is final
		expectCreate(runs, 10)
		runs.On("UpdateProgress", int64(10), mock.Anything).Return(nil)
		runs.On("Finish", int64(10), models.SyncStatusCompleted, (*string)(nil), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()
		id, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), id)
		waitFor(t, s)
	})

	t.Run("should give up after the configured attempts", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		s.finishPolicy.MaxAttempts = 3

		expectCreate(runs, 11)
		runs.On("UpdateProgress", int64(11), mock.Anything).Return(nil)
		runs.On("Finish", int64(11), models.SyncStatusCompleted, (*string)(nil), (*time.Time)(nil), models.SyncCounters{}).Return(false, fmt.Errorf("database is down")).Times(3)

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)
		waitFor(t, s)

		_, running := s.Running()
		assert.False(t, running)
		runs.AssertNumberOfCalls(t, "Finish", 3)
	})
}

func TestSyncServiceSingleFlight(t *testing.T) {
	t.Run("should reject a second trigger and cancel the prior run when forced", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		s, runs, _ := newTestSyncService(t, blockUntilCancelled(release))

		expectCreate(runs, 1)
		runs.On("LatestCompleted").Return(models.SyncRun{}, shared.ErrNotFound)

		first, err := s.Trigger(context.Background(), models.SyncTypeIncremental, false)
		assert.NoError(t, err)

		_, err = s.Trigger(context.Background(), models.SyncTypeIncremental, false)
		assert.ErrorIs(t, err, shared.ErrSyncAlreadyRunning)

		runs.On("Finish", first, models.SyncStatusCancelled, messageContains("superseded"), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()
		expectCreate(runs, 2)

		second, err := s.Trigger(context.Background(), models.SyncTypeFull, true)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), second)

		run, running := s.Running()
		assert.True(t, running)
		assert.Equal(t, int64(2), run.ID)
		assert.Equal(t, models.SyncTypeFull, run.SyncType)

		runs.On("Finish", second, models.SyncStatusCancelled, messageContains("shutting down"), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		assert.NoError(t, s.Shutdown(ctx))
	})

	t.Run("should mark the run cancelled on cancel", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		s, runs, _ := newTestSyncService(t, blockUntilCancelled(release))

		expectCreate(runs, 5)
		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.NoError(t, err)

		runs.On("Finish", int64(5), models.SyncStatusCancelled, messageContains("cancelled by request"), (*time.Time)(nil), models.SyncCounters{}).Return(true, nil).Once()
		cancelled, err := s.Cancel(context.Background())
		assert.NoError(t, err)
		assert.True(t, cancelled)

		_, running := s.Running()
		assert.False(t, running)
	})

	t.Run("should return false without any mutation when nothing is running", func(t *testing.T) {
		s, _, _ := newTestSyncService(t, servePages(nil))

		cancelled, err := s.Cancel(context.Background())
		assert.NoError(t, err)
		assert.False(t, cancelled)
	})

	t.Run("should refuse to start when sync is disabled", func(t *testing.T) {
		s, _, _ := newTestSyncService(t, servePages(nil))
		s.cfg.Enabled = false

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, false)
		assert.ErrorIs(t, err, shared.ErrSyncDisabled)
	})

	t.Run("should surface a running row owned by another instance", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		runs.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", shared.ErrSyncAlreadyRunning)).Once()

		_, err := s.Trigger(context.Background(), models.SyncTypeFull, true)
		assert.ErrorIs(t, err, shared.ErrSyncAlreadyRunning)
	})
}

func TestSyncServiceShouldRun(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should run without any completed run", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		runs.On("LatestCompleted").Return(models.SyncRun{}, shared.ErrNotFound)

		shouldRun, err := s.ShouldRun(now)
		assert.NoError(t, err)
		assert.True(t, shouldRun)
	})

	t.Run("should respect the interval", func(t *testing.T) {
		s, runs, _ := newTestSyncService(t, servePages(nil))
		completedAt := now.Add(-time.Hour)
		runs.On("LatestCompleted").Return(models.SyncRun{CompletedAt: &completedAt}, nil)

		shouldRun, err := s.ShouldRun(now)
		assert.NoError(t, err)
		assert.False(t, shouldRun)

		shouldRun, err = s.ShouldRun(now.Add(24 * time.Hour))
		assert.NoError(t, err)
		assert.True(t, shouldRun)
	})

	t.Run("should never run when disabled", func(t *testing.T) {
		s, _, _ := newTestSyncService(t, servePages(nil))
		s.cfg.Enabled = false

		shouldRun, err := s.ShouldRun(now)
		assert.NoError(t, err)
		assert.False(t, shouldRun)
	})
}

func TestSyncServiceCleanup(t *testing.T) {
	s, runs, _ := newTestSyncService(t, servePages(nil))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	runs.On("DeleteOlderThan", now.Add(-30*24*time.Hour)).Return(int64(4), nil)

	deleted, err := s.Cleanup(30 * 24 * time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestSyncServiceRefreshCVE(t *testing.T) {
	t.Run("should store the upstream record and return the stored one", func(t *testing.T) {
		s, _, vulnRepository := newTestSyncService(t, servePages([]map[string]any{
			nvdItem("CVE-2024-0001", "2024-02-01T00:00:00.000"),
		}))

		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(v *models.Vulnerability) bool {
			return v.CVEID == "CVE-2024-0001"
		})).Return("", models.UpsertUpdated, nil).Once()
		vulnRepository.On("Read", "CVE-2024-0001").Return(models.Vulnerability{CVEID: "CVE-2024-0001"}, nil).Once()

		vuln, err := s.RefreshCVE(context.Background(), "cve-2024-0001")
		assert.NoError(t, err)
		assert.Equal(t, "CVE-2024-0001", vuln.CVEID)
	})

	t.Run("should report not found if upstream does not know the id", func(t *testing.T) {
		s, _, _ := newTestSyncService(t, servePages(nil))

		_, err := s.RefreshCVE(context.Background(), "CVE-2024-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("should fail if the record could not be stored", func(t *testing.T) {
		s, _, vulnRepository := newTestSyncService(t, servePages([]map[string]any{
			nvdItem("CVE-2024-0001", "2024-02-01T00:00:00.000"),
		}))
		vulnRepository.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return("", models.UpsertUnchanged, fmt.Errorf("constraint violation")).Once()

		_, err := s.RefreshCVE(context.Background(), "CVE-2024-0001")
		assert.ErrorContains(t, err, "could not store CVE-2024-0001")
	})
}
