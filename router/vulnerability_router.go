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

type VulnerabilityRouter struct {
	*echo.Group
}

func NewVulnerabilityRouter(
	apiV1Router APIV1Router,
	vulnerabilityController *controllers.VulnerabilityController,
) VulnerabilityRouter {
	cveRouter := apiV1Router.Group.Group("/cves")
	cveRouter.GET("/", vulnerabilityController.List)
	cveRouter.POST("/", vulnerabilityController.Create)
	cveRouter.GET("/count/", vulnerabilityController.Count)
	cveRouter.GET("/statistics/", vulnerabilityController.Statistics)
	cveRouter.GET("/search/", vulnerabilityController.Search)
	cveRouter.GET("/year/:year/", vulnerabilityController.ByYear)
	cveRouter.GET("/score/:min/:max/", vulnerabilityController.ByScoreRange)
	cveRouter.GET("/modified/:days/", vulnerabilityController.RecentlyModified)

	cveRouter.GET("/:cveID/", vulnerabilityController.Read)
	cveRouter.PUT("/:cveID/", vulnerabilityController.Update)
	cveRouter.DELETE("/:cveID/", vulnerabilityController.Delete)

	return VulnerabilityRouter{Group: cveRouter}
}
