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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/l3montree-dev/cvesync/vulndb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type pendingChange struct {
	CVEID        string `json:"cveId" yaml:"cveId"`
	LastModified string `json:"lastModified" yaml:"lastModified"`
	Severity     string `json:"severity" yaml:"severity"`
	Score        string `json:"score" yaml:"score"`
	Action       string `json:"action" yaml:"action"`
}

func NewRecentCommand() *cobra.Command {
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show what the NVD API changed recently and what a sync would write",
		Long:  `Fetches every record modified upstream in the last days and compares it with the mirror. Nothing is written.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := getOutputFormat(cmd)
			if err != nil {
				return err
			}
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 || days > 120 {
				return fmt.Errorf("days must be between 1 and 120, got %d", days)
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			items, err := e.nvdClient.FetchRecent(cmd.Context(), days)
			if err != nil {
				return err
			}

			changes := make([]pendingChange, 0, len(items))
			for _, upstream := range vulndb.NormalizeAll(items) {
				stored, err := e.vulnerability.Read(upstream.CVEID)
				if err != nil && !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				changes = append(changes, toPendingChange(upstream, stored, err == nil))
			}

			return render(os.Stdout, format, changes, func() string {
				return pendingTable(changes)
			})
		},
	}

	recentCmd.Flags().Int("days", 1, "Look back this many days")
	return recentCmd
}

func toPendingChange(upstream, stored models.Vulnerability, exists bool) pendingChange {
	change := pendingChange{
		CVEID:        upstream.CVEID,
		LastModified: formatTime(upstream.LastModified),
		Severity:     utils.SafeDereference(upstream.CVSSV3Severity),
		Score:        "-",
		Action:       "up to date",
	}
	if upstream.CVSSV3Score != nil {
		change.Score = fmt.Sprintf("%.1f", *upstream.CVSSV3Score)
	}
	switch {
	case !exists:
		change.Action = "create"
	case upstream.IsNewerThan(stored):
		change.Action = "update"
	}
	return change
}

func pendingTable(changes []pendingChange) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"CVE", "Last modified", "Severity", "Score", "Action"})
	for _, c := range changes {
		tw.AppendRow(table.Row{c.CVEID, c.LastModified, c.Severity, c.Score, c.Action})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", len(changes)})
	return tw.Render()
}
