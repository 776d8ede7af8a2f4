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

package integrationtestutil

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// InitDatabaseContainer starts a postgres container, applies the embedded migrations
// and returns the connection. The test is skipped when no container runtime is available.
func InitDatabaseContainer(t *testing.T) (shared.DB, func()) {
	t.Helper()
	_, db, terminate := InitPoolContainer(t)
	return db, terminate
}

// InitPoolContainer is InitDatabaseContainer for tests which need the pgx pool as well
func InitPoolContainer(t *testing.T) (*pgxpool.Pool, shared.DB, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	dbName := "cvesync"
	dbUser := "user"
	dbPassword := "password"

	postgresC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)

	terminate := func() {
		if err := testcontainers.TerminateContainer(postgresC); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if err != nil {
		terminate()
		t.Fatalf("failed to start postgres container: %s", err)
	}

	host, _ := postgresC.Host(ctx)
	port, _ := postgresC.MappedPort(ctx, "5432")

	pool, db, err := database.Connect(database.PoolConfig{
		User:            dbUser,
		Password:        dbPassword,
		Host:            host,
		Port:            port.Port(),
		DBName:          dbName,
		MaxOpenConns:    10,
		MinConns:        1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
	})
	if err != nil {
		terminate()
		t.Fatalf("failed to connect to database: %s", err)
	}

	// the schema under test is the one from the embedded migration files
	if err := database.RunMigrationsWithDB(db); err != nil {
		pool.Close()
		terminate()
		t.Fatalf("failed to run migrations: %s", err)
	}

	return pool, db, func() {
		pool.Close()
		terminate()
	}
}
