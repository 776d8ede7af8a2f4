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
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/spf13/cobra"
)

func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about the mirrored CVEs",
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

			stats, err := e.vulnerability.Statistics()
			if err != nil {
				return err
			}
			return render(os.Stdout, format, stats, func() string {
				return statsTable(stats)
			})
		},
	}
}

func statsTable(stats dtos.VulnerabilityStatistics) string {
	tw := table.NewWriter()
	tw.AppendRows([]table.Row{
		{"Total", stats.TotalCves},
		{"Critical", stats.CriticalCves},
		{"High", stats.HighCves},
		{"Medium", stats.MediumCves},
		{"Low", stats.LowCves},
		{"Unscored", stats.UnscoredCves},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Published today", stats.TodayPublished},
		{"Published this week", stats.WeekPublished},
		{"Published this month", stats.MonthPublished},
		{"Last modified", formatTime(stats.LastUpdated)},
	})
	return tw.Render()
}
