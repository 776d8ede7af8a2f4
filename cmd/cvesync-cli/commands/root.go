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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/database/repositories"
	"github.com/l3montree-dev/cvesync/services"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/vulndb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var rootCmd = &cobra.Command{
	Use:   "cvesync-cli",
	Short: "Management cli",
	Long:  `The cvesync cli talks directly to the database a cvesync instance uses. It can run syncs in the foreground and inspect the mirror.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().String("nvd-api-key", "", "NVD API key, overrides NVD_API_KEY")
	rootCmd.PersistentFlags().Int("batch-size", 0, "Records per upsert batch, overrides SYNC_BATCH_SIZE")
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// flags which override an environment variable of the same meaning
var envFlags = map[string]string{
	"nvd-api-key": "NVD_API_KEY",
	"batch-size":  "SYNC_BATCH_SIZE",
}

// bindFlags exports every changed flag with an environment counterpart so config.Load picks it up
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		env, ok := envFlags[f.Name]
		if !ok || !f.Changed {
			return
		}
		if setErr := os.Setenv(env, f.Value.String()); setErr != nil {
			err = errors.Wrapf(setErr, "could not apply flag %s", f.Name)
		}
	})
	return err
}

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func getOutputFormat(cmd *cobra.Command) (outputFormat, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	switch outputFormat(format) {
	case outputTable, outputJSON, outputYAML:
		return outputFormat(format), nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected table, json or yaml", format)
	}
}

// render writes v as json or yaml, or calls table for the table output
func render(w io.Writer, format outputFormat, v any, table func() string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		_, err := fmt.Fprintln(w, table())
		return err
	}
}

// env holds the wired dependencies a command needs
type env struct {
	cfg               config.Config
	pool              *pgxpool.Pool
	db                shared.DB
	syncRunRepository shared.SyncRunRepository
	vulnerability     *services.VulnerabilityService
	nvdClient         *vulndb.NVDClient
}

func (e env) Close() {
	e.pool.Close()
}

func setup() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	pool, db, err := database.Connect(database.GetPoolConfigFromEnv())
	if err != nil {
		return env{}, errors.Wrap(err, "could not connect to database")
	}

	return env{
		cfg:               cfg,
		pool:              pool,
		db:                db,
		syncRunRepository: repositories.NewSyncRunRepository(db),
		vulnerability:     services.NewVulnerabilityService(repositories.NewVulnerabilityRepository(db), cfg),
		nvdClient:         vulndb.NewNVDClient(cfg.NVD),
	}, nil
}

func pingDatabase(ctx context.Context, e env) error {
	if err := e.pool.Ping(ctx); err != nil {
		slog.Error("database is not reachable", "err", err)
		return err
	}
	return nil
}
