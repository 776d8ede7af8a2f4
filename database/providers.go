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

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/cvesync/shared"
	"go.uber.org/fx"
)

func registerPoolLifecycle(lc fx.Lifecycle, pool *pgxpool.Pool, broker *PostgreSQLBroker) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			broker.Close()
			pool.Close()
			return nil
		},
	})
}

// Module provides the pgx pool and the gorm connection on top of it.
var Module = fx.Module("database",
	fx.Provide(GetPoolConfigFromEnv),
	fx.Provide(NewPgxConnPool),
	fx.Provide(NewGormDB),
	fx.Provide(NewPostgreSQLBroker),
	fx.Provide(func(b *PostgreSQLBroker) shared.PubSubBroker { return b }),
	fx.Invoke(registerPoolLifecycle),
)
