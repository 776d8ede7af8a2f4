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
	"time"

	"github.com/l3montree-dev/cvesync/services"
	"github.com/spf13/cobra"
)

func NewCleanupCommand() *cobra.Command {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete finished sync runs older than the given number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 || days > 365 {
				return fmt.Errorf("days must be between 1 and 365, got %d", days)
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			syncService := services.NewSyncService(e.syncRunRepository, e.vulnerability, e.nvdClient, nil, e.cfg)
			deleted, err := syncService.Cleanup(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d sync runs older than %d days\n", deleted, days)
			return nil
		},
	}

	cleanupCmd.Flags().Int("days", 30, "Retention in days")
	return cleanupCmd
}
