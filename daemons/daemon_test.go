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

package daemons

import (
	"fmt"
	"testing"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/mocks"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T) (*DaemonRunner, *mocks.SyncService, *mocks.ConfigService, *mocks.LeaderElector) {
	syncService := mocks.NewSyncService(t)
	configService := mocks.NewConfigService(t)
	leaderElector := mocks.NewLeaderElector(t)
	runner := NewDaemonRunner(syncService, configService, leaderElector, config.Default())
	runner.now = func() time.Time { return now }
	return runner, syncService, configService, leaderElector
}

func TestRunSync(t *testing.T) {
	t.Run("should not trigger a sync if none is due", func(t *testing.T) {
		runner, syncService, _, _ := newTestRunner(t)
		syncService.On("ShouldRun", now).Return(false, nil)

		assert.NoError(t, runner.RunSync())
		syncService.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should trigger an incremental sync if one is due", func(t *testing.T) {
		runner, syncService, _, _ := newTestRunner(t)
		syncService.On("ShouldRun", now).Return(true, nil)
		syncService.On("Trigger", mock.Anything, models.SyncTypeIncremental, false).Return(int64(4), nil).Once()

		assert.NoError(t, runner.RunSync())
	})

	t.Run("should swallow already running and disabled", func(t *testing.T) {
		for _, expected := range []error{shared.ErrSyncAlreadyRunning, shared.ErrSyncDisabled} {
			runner, syncService, _, _ := newTestRunner(t)
			syncService.On("ShouldRun", now).Return(true, nil)
			syncService.On("Trigger", mock.Anything, models.SyncTypeIncremental, false).Return(int64(0), errors.Wrap(expected, "trigger")).Once()

			assert.NoError(t, runner.RunSync())
		}
	})

	t.Run("should return other errors", func(t *testing.T) {
		runner, syncService, _, _ := newTestRunner(t)
		syncService.On("ShouldRun", now).Return(true, nil)
		syncService.On("Trigger", mock.Anything, models.SyncTypeIncremental, false).Return(int64(0), fmt.Errorf("database down")).Once()

		assert.ErrorContains(t, runner.RunSync(), "database down")
	})
}

func TestRunCleanup(t *testing.T) {
	t.Run("should clean up if it never ran before", func(t *testing.T) {
		runner, syncService, configService, _ := newTestRunner(t)
		configService.On("GetJSONConfig", cleanupKey, mock.Anything).Return(errors.Wrap(shared.ErrNotFound, "record not found"))
		syncService.On("Cleanup", 720*time.Hour).Return(int64(3), nil).Once()
		configService.On("SetJSONConfig", cleanupKey, mock.Anything).Return(nil).Once()

		assert.NoError(t, runner.RunCleanup())
	})

	t.Run("should skip the cleanup if it ran within the last day", func(t *testing.T) {
		runner, syncService, configService, _ := newTestRunner(t)
		configService.On("GetJSONConfig", cleanupKey, mock.Anything).Run(func(args mock.Arguments) {
			target := args.Get(1).(*struct {
				Time time.Time `json:"time"`
			})
			target.Time = now.Add(-2 * time.Hour)
		}).Return(nil)

		assert.NoError(t, runner.RunCleanup())
		syncService.AssertNotCalled(t, "Cleanup", mock.Anything)
	})

	t.Run("should skip the cleanup if the last run cannot be read", func(t *testing.T) {
		runner, syncService, configService, _ := newTestRunner(t)
		configService.On("GetJSONConfig", cleanupKey, mock.Anything).Return(fmt.Errorf("connection reset"))

		assert.NoError(t, runner.RunCleanup())
		syncService.AssertNotCalled(t, "Cleanup", mock.Anything)
	})
}

func TestTick(t *testing.T) {
	t.Run("should do nothing if this instance is not the leader", func(t *testing.T) {
		runner, syncService, _, leaderElector := newTestRunner(t)
		leaderElector.On("IsLeader").Return(false)

		runner.tick()
		syncService.AssertNotCalled(t, "ShouldRun", mock.Anything)
	})

	t.Run("should run the cleanup even if the sync check failed", func(t *testing.T) {
		runner, syncService, configService, leaderElector := newTestRunner(t)
		leaderElector.On("IsLeader").Return(true)
		syncService.On("ShouldRun", now).Return(false, fmt.Errorf("database down"))
		configService.On("GetJSONConfig", cleanupKey, mock.Anything).Return(errors.Wrap(shared.ErrNotFound, "record not found"))
		syncService.On("Cleanup", mock.Anything).Return(int64(0), nil).Once()
		configService.On("SetJSONConfig", cleanupKey, mock.Anything).Return(nil).Once()

		runner.tick()
	})
}

func TestStartStop(t *testing.T) {
	t.Run("should tick on start and stop cleanly", func(t *testing.T) {
		runner, _, _, leaderElector := newTestRunner(t)
		runner.initialDelay = 0
		runner.tickInterval = time.Hour
		ticked := make(chan struct{})
		leaderElector.On("IsLeader").Run(func(mock.Arguments) { close(ticked) }).Return(false).Once()

		runner.Start()
		select {
		case <-ticked:
		case <-time.After(5 * time.Second):
			t.Fatal("daemon did not tick")
		}
		runner.Stop()
	})

	t.Run("should not start if daemons are disabled", func(t *testing.T) {
		runner, _, _, _ := newTestRunner(t)
		runner.cfg.DisableDaemons = true

		runner.Start()
		runner.Stop()
		assert.Nil(t, runner.cancel)
	})
}
