package daemons

import (
	"context"
	"log/slog"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/monitoring"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/pkg/errors"
)

const cleanupKey = "daemons.syncHistoryCleanup"

func getLastRunTime(configService shared.ConfigService, key string) (time.Time, error) {
	var lastRun struct {
		Time time.Time `json:"time"`
	}

	err := configService.GetJSONConfig(key, &lastRun)

	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		slog.Error("could not get last run time", "err", err, "key", key)
		return time.Time{}, err
	} else if errors.Is(err, shared.ErrNotFound) {
		slog.Info("no last run time found. Setting to 0", "key", key)
		return time.Time{}, nil
	}

	return lastRun.Time, nil
}

func (runner *DaemonRunner) shouldRun(key string, every time.Duration) bool {
	lastTime, err := getLastRunTime(runner.configService, key)
	if err != nil {
		return false
	}

	return runner.now().Sub(lastTime) > every
}

func (runner *DaemonRunner) markRan(key string) error {
	return runner.configService.SetJSONConfig(key, struct {
		Time time.Time `json:"time"`
	}{
		Time: runner.now(),
	})
}

// RunSync triggers an incremental sync when the last one is older than the configured interval.
func (runner *DaemonRunner) RunSync() error {
	shouldRun, err := runner.syncService.ShouldRun(runner.now())
	if err != nil {
		return errors.Wrap(err, "could not check if a sync is due")
	}
	if !shouldRun {
		slog.Debug("no sync due")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	syncID, err := runner.syncService.Trigger(ctx, models.SyncTypeIncremental, false)
	switch {
	case errors.Is(err, shared.ErrSyncAlreadyRunning), errors.Is(err, shared.ErrSyncDisabled):
		slog.Info("skipping scheduled sync", "reason", err)
		return nil
	case err != nil:
		return errors.Wrap(err, "could not trigger scheduled sync")
	}
	slog.Info("scheduled sync started", "syncID", syncID)
	return nil
}

// RunCleanup deletes finished sync runs older than the retention, at most once a day.
func (runner *DaemonRunner) RunCleanup() error {
	if !runner.shouldRun(cleanupKey, 24*time.Hour) {
		return nil
	}

	deleted, err := runner.syncService.Cleanup(runner.cfg.HistoryRetention)
	if err != nil {
		return errors.Wrap(err, "could not clean up sync history")
	}
	if err := runner.markRan(cleanupKey); err != nil {
		slog.Error("could not mark sync history cleanup as done", "err", err)
	}
	slog.Info("sync history cleaned up", "deleted", deleted, "retention", runner.cfg.HistoryRetention)
	return nil
}

func (runner *DaemonRunner) tick() {
	if !runner.leaderElector.IsLeader() {
		slog.Info("not the leader - skipping background jobs")
		return
	}

	start := time.Now()
	defer func() {
		monitoring.DaemonTickDuration.Observe(time.Since(start).Seconds())
	}()
	slog.Info("this instance is the leader - running background jobs")

	if err := runner.RunSync(); err != nil {
		monitoring.Alert("scheduled sync failed", err)
	}
	if err := runner.RunCleanup(); err != nil {
		monitoring.Alert("sync history cleanup failed", err)
	}

	slog.Info("background jobs finished", "duration", time.Since(start))
}
