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
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/spf13/cobra"
)

func NewHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := getOutputFormat(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 1 || limit > 100 {
				return fmt.Errorf("limit must be between 1 and 100, got %d", limit)
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			runs, err := e.syncRunRepository.History(limit)
			if err != nil {
				return err
			}
			return render(os.Stdout, format, runs, func() string {
				return historyTable(runs)
			})
		},
	}

	historyCmd.Flags().IntP("limit", "l", 20, "Number of runs to show")
	return historyCmd
}

func statusColor(status models.SyncStatus) text.Colors {
	switch status {
	case models.SyncStatusCompleted:
		return text.Colors{text.FgGreen}
	case models.SyncStatusFailed:
		return text.Colors{text.FgRed}
	case models.SyncStatusRunning:
		return text.Colors{text.FgBlue}
	default:
		return text.Colors{text.FgYellow}
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func historyTable(runs []models.SyncRun) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Type", "Status", "Started", "Completed", "Total", "Processed", "New", "Updated", "High-water mark", "Error"})
	for _, run := range runs {
		errMsg := ""
		if run.ErrorMessage != nil {
			errMsg = text.WrapText(*run.ErrorMessage, 60)
		}
		tw.AppendRow(table.Row{
			run.ID,
			run.SyncType,
			statusColor(run.Status).Sprint(run.Status),
			formatTime(&run.StartedAt),
			formatTime(run.CompletedAt),
			run.TotalRecords,
			run.ProcessedRecords,
			run.NewRecords,
			run.UpdatedRecords,
			formatTime(run.LastModifiedDate),
			errMsg,
		})
	}
	return tw.Render()
}
