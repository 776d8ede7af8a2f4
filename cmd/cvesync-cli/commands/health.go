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
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type healthReport struct {
	Database      string     `json:"database" yaml:"database"`
	NVDAPI        string     `json:"nvdApi" yaml:"nvdApi"`
	HighWaterMark *time.Time `json:"highWaterMark,omitempty" yaml:"highWaterMark,omitempty"`
}

func (r healthReport) healthy() bool {
	return r.Database == "up" && r.NVDAPI == "up"
}

func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the database and the NVD API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := getOutputFormat(cmd)
			if err != nil {
				return err
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			report := healthReport{Database: "up", NVDAPI: "up"}
			if err := pingDatabase(ctx, e); err != nil {
				report.Database = "down"
			} else if latest, err := e.syncRunRepository.LatestCompleted(); err == nil {
				report.HighWaterMark = latest.LastModifiedDate
			}
			if err := e.nvdClient.Ping(ctx); err != nil {
				report.NVDAPI = "down"
			}

			if err := render(os.Stdout, format, report, func() string {
				return healthTable(report)
			}); err != nil {
				return err
			}
			if !report.healthy() {
				return errors.New("unhealthy")
			}
			return nil
		},
	}
}

func healthTable(report healthReport) string {
	state := func(s string) string {
		if s == "up" {
			return text.FgGreen.Sprint(s)
		}
		return text.FgRed.Sprint(s)
	}
	tw := table.NewWriter()
	tw.AppendRows([]table.Row{
		{"Database", state(report.Database)},
		{"NVD API", state(report.NVDAPI)},
		{"High-water mark", formatTime(report.HighWaterMark)},
	})
	return tw.Render()
}
