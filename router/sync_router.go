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

package router

import (
	"github.com/l3montree-dev/cvesync/controllers"
	"github.com/labstack/echo/v4"
)

type SyncRouter struct {
	*echo.Group
}

func NewSyncRouter(
	apiV1Router APIV1Router,
	syncController *controllers.SyncController,
) SyncRouter {
	syncRouter := apiV1Router.Group.Group("/sync")
	syncRouter.POST("/", syncController.Trigger)
	syncRouter.GET("/status/", syncController.Status)
	syncRouter.GET("/status/:id/", syncController.StatusByID)
	syncRouter.GET("/history/", syncController.History)
	syncRouter.GET("/running/", syncController.Running)
	syncRouter.POST("/cancel/", syncController.Cancel)
	syncRouter.DELETE("/cleanup/", syncController.Cleanup)
	syncRouter.GET("/health/", syncController.Health)
	syncRouter.POST("/cves/:cveID/", syncController.RefreshCVE)

	return SyncRouter{Group: syncRouter}
}
