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

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/services"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func NewSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync against the NVD API in the foreground",
		Long:  `Runs a full or incremental sync in this process and shows its progress. Ctrl-C cancels the run. The run is recorded in the sync history like any other.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncType, _ := cmd.Flags().GetString("type")
			force, _ := cmd.Flags().GetBool("force")
			return runSync(cmd.Context(), models.SyncType(syncType), force)
		},
	}

	syncCmd.Flags().StringP("type", "t", string(models.SyncTypeIncremental), "Sync type: full or incremental")
	syncCmd.Flags().Bool("force", false, "Run even if syncing is disabled by configuration")
	return syncCmd
}

func runSync(ctx context.Context, syncType models.SyncType, force bool) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	// completed runs notify the running instances so they drop their cached statistics
	broker := database.NewPostgreSQLBroker(e.pool)
	defer broker.Close()
	syncService := services.NewSyncService(e.syncRunRepository, e.vulnerability, e.nvdClient, broker, e.cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncID, err := syncService.Trigger(ctx, syncType, force)
	if err != nil {
		return err
	}
	slog.Info("sync started", "syncID", syncID, "type", syncType)

	go func() {
		<-ctx.Done()
		cancelCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := syncService.Cancel(cancelCtx); err != nil {
			slog.Error("could not cancel sync", "err", err)
		}
	}()

	showProgress(syncService)

	run, err := e.syncRunRepository.Read(syncID)
	if err != nil {
		return err
	}
	fmt.Printf("sync %d %s: %d processed, %d new, %d updated\n", run.ID, run.Status, run.ProcessedRecords, run.NewRecords, run.UpdatedRecords)
	if run.Status != models.SyncStatusCompleted {
		if run.ErrorMessage != nil {
			return fmt.Errorf("sync %s: %s", run.Status, *run.ErrorMessage)
		}
		return fmt.Errorf("sync %s", run.Status)
	}
	return nil
}

// showProgress spins until the total is known, then renders a progress bar until the run is over
func showProgress(syncService *services.SyncService) {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " cvesync: probing the NVD API for the number of records"
	s.Start()

	var bar *progressbar.ProgressBar
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		run, running := syncService.Running()
		if !running {
			break
		}
		if run.TotalRecords == 0 {
			continue
		}
		if bar == nil {
			s.Stop()
			bar = progressbar.Default(int64(run.TotalRecords))
		}
		bar.Set(run.ProcessedRecords) // nolint: errcheck
	}

	s.Stop()
	if bar != nil {
		bar.Finish() // nolint: errcheck
	}
	// the row is final once Running reports false, Wait lets the run goroutine return
	syncService.Wait(context.Background()) // nolint: errcheck
}
