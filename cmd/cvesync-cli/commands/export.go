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
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/l3montree-dev/cvesync/database"
	"github.com/spf13/cobra"
)

func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the mirrored CVEs as csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceFlag, _ := cmd.Flags().GetString("since")
			out, _ := cmd.Flags().GetString("file")

			var since *time.Time
			if sinceFlag != "" {
				t, err := time.Parse(time.DateOnly, sinceFlag)
				if err != nil {
					return fmt.Errorf("invalid --since %q, expected YYYY-MM-DD", sinceFlag)
				}
				since = &t
			}

			var w io.Writer = os.Stdout
			if out != "" {
				fd, err := os.Create(out)
				if err != nil {
					return err
				}
				defer fd.Close()
				w = fd
			}

			return withDatabase(func(e env) error {
				n, err := database.ExportVulnerabilitiesCSV(cmd.Context(), e.pool, w, since)
				if err != nil {
					return err
				}
				slog.Info("export finished", "rows", n, "file", out)
				return nil
			})
		},
	}

	exportCmd.Flags().String("since", "", "Only export records modified at or after this date (YYYY-MM-DD)")
	exportCmd.Flags().StringP("file", "f", "", "Write to this file instead of stdout")
	return exportCmd
}
