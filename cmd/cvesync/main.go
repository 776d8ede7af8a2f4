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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/l3montree-dev/cvesync/cmd/cvesync/api"
	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/controllers"
	"github.com/l3montree-dev/cvesync/daemons"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/database/repositories"
	"github.com/l3montree-dev/cvesync/router"
	"github.com/l3montree-dev/cvesync/services"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/vulndb"
	"go.uber.org/fx"

	_ "github.com/lib/pq"
)

//	@title			cvesync API
//	@version		v1
//	@description	Mirror of the NVD CVE API 2.0

//	@contact.name	Support
//	@contact.url	https://github.com/l3montree-dev/cvesync/issues

//	@license.name	AGPL-3
//	@license.url	https://github.com/l3montree-dev/cvesync/blob/main/LICENSE.txt

// @host		localhost:8080
// @BasePath	/api/v1
func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not load configuration", "err", err)
		panic(errors.New("Failed to load configuration"))
	}

	if cfg.Server.ErrorTrackingDSN != "" {
		initSentry(cfg.Server)

		// Catch panics
		defer func() {
			if err := recover(); err != nil {
				sentry.CurrentHub().Recover(err)
				// Wait for events to be send to server
				sentry.Flush(time.Second * 5)
			}
		}()
	}

	fx.New(
		fx.Supply(cfg),
		database.Module,
		vulndb.Module,
		repositories.Module,
		services.ServiceModule,
		controllers.ControllerModule,
		api.Module,
		router.RouterModule,
		daemons.Module,

		// migrations have to run before any lifecycle hook starts the server or the daemons
		fx.Invoke(prepareDatabase),
		// we need to invoke all routers to register their routes
		fx.Invoke(func(router.VulnerabilityRouter) {}),
		fx.Invoke(func(router.SyncRouter) {}),
		fx.Invoke(func(api.Server) {}),
	).Run()
}

func prepareDatabase(db shared.DB, cfg config.Config, syncRunRepository shared.SyncRunRepository) error {
	if cfg.Sync.DisableAutoMigrations {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
		return nil
	}

	slog.Info("running database migrations...")
	if err := database.RunMigrationsWithDB(db); err != nil {
		slog.Error("failed to run database migrations", "error", err)
		return errors.New("Failed to run database migrations")
	}

	// the migrating instance also owns stale runs left behind by a crashed process
	marked, err := syncRunRepository.MarkStaleRunning("interrupted by a restart")
	if err != nil {
		return err
	}
	if marked > 0 {
		slog.Warn("marked interrupted sync runs as failed", "count", marked)
	}
	return nil
}
