// Copyright (C) 2025 l3montree GmbH
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
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/shared"
	"go.uber.org/fx"
)

// DaemonRunner runs the scheduled sync and the sync history cleanup on the elected leader
type DaemonRunner struct {
	syncService   shared.SyncService
	configService shared.ConfigService
	leaderElector shared.LeaderElector
	cfg           config.SyncConfig

	now          func() time.Time
	initialDelay time.Duration
	tickInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDaemonRunner(
	syncService shared.SyncService,
	configService shared.ConfigService,
	leaderElector shared.LeaderElector,
	cfg config.Config,
) *DaemonRunner {
	return &DaemonRunner{
		syncService:   syncService,
		configService: configService,
		leaderElector: leaderElector,
		cfg:           cfg.Sync,
		now:           time.Now,
		// give the leader election a chance to settle
		initialDelay: 30 * time.Second,
		tickInterval: 5 * time.Minute,
	}
}

// Start initiates the background loop. It does nothing if daemons are disabled.
func (runner *DaemonRunner) Start() {
	if runner.cfg.DisableDaemons {
		slog.Info("daemons disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner.cancel = cancel
	runner.wg.Add(1)
	go func() {
		defer runner.wg.Done()
		select {
		case <-ctx.Done():
			return
		case <-time.After(runner.initialDelay):
		}

		runner.tick()
		ticker := time.NewTicker(runner.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runner.tick()
			}
		}
	}()
}

// Stop ends the loop and waits for a running tick to return
func (runner *DaemonRunner) Stop() {
	if runner.cancel != nil {
		runner.cancel()
	}
	runner.wg.Wait()
}

var _ shared.DaemonRunner = (*DaemonRunner)(nil)

func registerLifecycle(lc fx.Lifecycle, runner shared.DaemonRunner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runner.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			runner.Stop()
			return nil
		},
	})
}

var Module = fx.Module("daemons",
	fx.Provide(fx.Annotate(NewDaemonRunner, fx.As(new(shared.DaemonRunner)))),
	fx.Invoke(registerLifecycle),
)
