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

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/l3montree-dev/cvesync/config"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/shared"
)

type HealthController struct {
	vulnerabilityService shared.VulnerabilityService
	syncRunRepository    shared.SyncRunRepository
}

func NewHealthController(vulnerabilityService shared.VulnerabilityService, syncRunRepository shared.SyncRunRepository) *HealthController {
	return &HealthController{
		vulnerabilityService: vulnerabilityService,
		syncRunRepository:    syncRunRepository,
	}
}

// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} dtos.HealthResponse
// @Failure 503 {object} dtos.HealthResponse
// @Router /health/ [get]
func (c HealthController) Health(ctx shared.Context) error {
	resp := dtos.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   config.Version,
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 5*time.Second)
	defer cancel()
	if err := c.vulnerabilityService.Ping(pingCtx); err != nil {
		resp.Status = "unhealthy"
		return ctx.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.DatabaseConnected = true

	if run, err := c.syncRunRepository.LatestCompleted(); err == nil {
		resp.LastSync = run.CompletedAt
	}
	if stats, err := c.vulnerabilityService.Statistics(); err == nil {
		resp.TotalCves = stats.TotalCves
	}
	return ctx.JSON(http.StatusOK, resp)
}
