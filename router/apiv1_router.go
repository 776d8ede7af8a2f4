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

package router

import (
	"os"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/cvesync/cmd/cvesync/api"
	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/controllers"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIV1Router struct {
	*echo.Group
}

func NewAPIV1Router(srv api.Server,
	db shared.DB,
	pool *pgxpool.Pool,
	cfg config.Config,
	syncService shared.SyncService,
	syncRunRepository shared.SyncRunRepository,
	healthController *controllers.HealthController,
) APIV1Router {
	apiV1Router := srv.Echo.Group("/api/v1")

	apiV1Router.GET("/info/", func(c echo.Context) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		resp := InfoResponse{
			Build: BuildInfo{
				Version:   config.Version,
				Commit:    config.Commit,
				Branch:    config.Branch,
				BuildDate: config.BuildDate,
			},
			Runtime: RuntimeInfo{
				GoVersion:     runtime.Version(),
				NumGoroutines: runtime.NumGoroutine(),
				Mem: MemStats{
					Alloc:      mem.Alloc,
					TotalAlloc: mem.TotalAlloc,
					Sys:        mem.Sys,
					HeapAlloc:  mem.HeapAlloc,
				},
			},
			Process: ProcessInfo{
				PID:           os.Getpid(),
				UptimeSeconds: int(time.Since(api.StartedAt).Seconds()),
			},
			Sync: SyncInfo{
				Enabled:              cfg.Sync.Enabled,
				Interval:             cfg.Sync.Interval.String(),
				BatchSize:            cfg.Sync.BatchSize,
				MaxConcurrentBatches: cfg.Sync.MaxConcurrentBatches,
				ResultsPerPage:       cfg.NVD.ResultsPerPage,
				RateLimitDelay:       cfg.NVD.RateLimitDelay.String(),
				APIKeyConfigured:     cfg.NVD.APIKey != "",
				DaemonsEnabled:       !cfg.Sync.DisableDaemons,
			},
		}
		_, resp.Sync.Running = syncService.Running()

		host, _ := os.Hostname()
		if host != "" {
			resp.Process.Hostname = host
		}

		poolCfg := database.GetPoolConfigFromEnv()
		poolInfo := PoolInfo{
			DBName:          poolCfg.DBName,
			MaxOpenConns:    poolCfg.MaxOpenConns,
			ConnMaxLifetime: poolCfg.ConnMaxLifetime.String(),
			ConnMaxIdleTime: poolCfg.ConnMaxIdleTime.String(),
		}

		dbInfo := DatabaseInfo{Status: "unknown"}
		if err := pool.Ping(c.Request().Context()); err != nil {
			errMsg := "database ping failed"
			dbInfo.Status = "unhealthy"
			dbInfo.Error = &errMsg
		} else {
			dbInfo.Status = "healthy"

			stats := pool.Stat()
			dbInfo.OpenConnections = int(stats.TotalConns())
			dbInfo.InUse = int(stats.AcquiredConns())
			dbInfo.Idle = int(stats.IdleConns())
			dbInfo.MaxOpenConnections = int(stats.MaxConns())

			poolInfo.TotalConns = int(stats.TotalConns())
			poolInfo.IdleConns = int(stats.IdleConns())
			poolInfo.AcquiredConns = int(stats.AcquiredConns())
			poolInfo.MaxConns = int(stats.MaxConns())

			if ver, dirty, err := database.GetMigrationVersionWithDB(db); err == nil {
				v := ver
				dbInfo.MigrationVersion = &v
				dbInfo.MigrationDirty = &dirty
			} else {
				errStr := err.Error()
				dbInfo.MigrationError = &errStr
			}

			if run, err := syncRunRepository.LatestCompleted(); err == nil {
				resp.Sync.HighWaterMark = run.LastModifiedDate
			}
		}
		dbInfo.Pool = &poolInfo
		resp.Database = dbInfo

		return c.JSON(200, resp)
	})

	apiV1Router.GET("/metrics/", echo.WrapHandler(promhttp.Handler()))
	apiV1Router.GET("/health/", healthController.Health)

	return APIV1Router{
		Group: apiV1Router,
	}
}
