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
	"strconv"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	migrate := cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(e env) error {
				return database.RunMigrationsWithDB(e.db)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				var err error
				if steps, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid number of steps %q", args[0])
				}
			}
			return withDatabase(func(e env) error {
				return database.RollbackMigrationsWithDB(e.db, steps)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(e env) error {
				version, dirty, err := database.GetMigrationVersionWithDB(e.db)
				if err != nil {
					return err
				}
				fmt.Printf("schema version %d (dirty: %t), cvesync %s\n", version, dirty, config.Version)
				return nil
			})
		},
	})

	return &migrate
}

// withDatabase connects without loading the full configuration so a broken environment cannot block migrations
func withDatabase(fn func(e env) error) error {
	pool, db, err := database.Connect(database.GetPoolConfigFromEnv())
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(env{pool: pool, db: db})
}
