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
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type SyncController struct {
	syncService       shared.SyncService
	syncRunRepository shared.SyncRunRepository
	nvdClient         shared.NVDClient
}

func NewSyncController(syncService shared.SyncService, syncRunRepository shared.SyncRunRepository, nvdClient shared.NVDClient) *SyncController {
	return &SyncController{
		syncService:       syncService,
		syncRunRepository: syncRunRepository,
		nvdClient:         nvdClient,
	}
}

// @Summary Trigger a sync
// @Tags Sync
// @Accept json
// @Produce json
// @Param body body dtos.SyncTriggerRequest false "Sync type and force flag"
// @Success 202 {object} dtos.SyncTriggerResponse
// @Failure 400 {object} object{message=string} "disabled or already running"
// @Router /sync/ [post]
func (c SyncController) Trigger(ctx shared.Context) error {
	var req dtos.SyncTriggerRequest
	if ctx.Request().ContentLength != 0 {
		if err := bindAndValidate(ctx, &req); err != nil {
			return err
		}
	}
	if req.SyncType == "" {
		req.SyncType = models.SyncTypeIncremental
	}

	syncID, err := c.syncService.Trigger(ctx.Request().Context(), req.SyncType, req.Force)
	if err != nil {
		return toHTTPError(err, "could not start sync")
	}

	return ctx.JSON(http.StatusAccepted, dtos.SyncTriggerResponse{
		Message:  fmt.Sprintf("%s sync started", req.SyncType),
		SyncID:   syncID,
		SyncType: req.SyncType,
	})
}

// @Summary Latest sync run, or the one given by syncId
// @Tags Sync
// @Produce json
// @Param syncId query int false "Sync id"
// @Success 200 {object} models.SyncRun
// @Failure 404 {object} object{message=string}
// @Router /sync/status/ [get]
func (c SyncController) Status(ctx shared.Context) error {
	if raw := ctx.QueryParam("syncId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return unprocessable("syncId must be an integer", err)
		}
		return c.respondWithRun(ctx, id)
	}

	run, err := c.syncRunRepository.Latest()
	if err != nil {
		return toHTTPError(err, "could not get sync status")
	}
	return ctx.JSON(http.StatusOK, c.withLiveCounters(run))
}

// @Summary Get a sync run
// @Tags Sync
// @Produce json
// @Param id path int true "Sync id"
// @Success 200 {object} models.SyncRun
// @Router /sync/status/{id}/ [get]
func (c SyncController) StatusByID(ctx shared.Context) error {
	id, err := strconv.ParseInt(shared.SanitizeParam(shared.GetParam(ctx, "id")), 10, 64)
	if err != nil {
		return unprocessable("id must be an integer", err)
	}
	return c.respondWithRun(ctx, id)
}

func (c SyncController) respondWithRun(ctx shared.Context, id int64) error {
	run, err := c.syncRunRepository.Read(id)
	if err != nil {
		return toHTTPError(err, fmt.Sprintf("could not get sync %d", id))
	}
	return ctx.JSON(http.StatusOK, c.withLiveCounters(run))
}

// withLiveCounters swaps in the in-memory counters of the active run.
func (c SyncController) withLiveCounters(run models.SyncRun) models.SyncRun {
	if active, ok := c.syncService.Running(); ok && active.ID == run.ID {
		return *active
	}
	return run
}

// @Summary Sync history, newest first
// @Tags Sync
// @Produce json
// @Param limit query int false "Number of runs (1..100)"
// @Success 200 {array} models.SyncRun
// @Router /sync/history/ [get]
func (c SyncController) History(ctx shared.Context) error {
	limit, err := intQuery(ctx, "limit", 20, 1, 100)
	if err != nil {
		return err
	}

	runs, err := c.syncRunRepository.History(limit)
	if err != nil {
		return toHTTPError(err, "could not get sync history")
	}
	return ctx.JSON(http.StatusOK, runs)
}

// @Summary Currently running sync
// @Tags Sync
// @Produce json
// @Success 200 {object} dtos.SyncRunningResponse
// @Router /sync/running/ [get]
func (c SyncController) Running(ctx shared.Context) error {
	run, running := c.syncService.Running()
	return ctx.JSON(http.StatusOK, dtos.SyncRunningResponse{
		Running: running,
		Sync:    run,
	})
}

// @Summary Cancel the running sync
// @Tags Sync
// @Produce json
// @Success 200 {object} dtos.MessageResponse
// @Failure 404 {object} object{message=string} "nothing running"
// @Router /sync/cancel/ [post]
func (c SyncController) Cancel(ctx shared.Context) error {
	cancelled, err := c.syncService.Cancel(ctx.Request().Context())
	if err != nil {
		return toHTTPError(err, "could not cancel sync")
	}
	if !cancelled {
		return echo.NewHTTPError(http.StatusNotFound, "no sync is running")
	}
	return ctx.JSON(http.StatusOK, dtos.MessageResponse{Message: "sync cancelled"})
}

// @Summary Delete finished sync runs older than days
// @Tags Sync
// @Produce json
// @Param days query int false "Retention in days (1..365)"
// @Success 200 {object} dtos.SyncCleanupResponse
// @Router /sync/cleanup/ [delete]
func (c SyncController) Cleanup(ctx shared.Context) error {
	days, err := intQuery(ctx, "days", 30, 1, 365)
	if err != nil {
		return err
	}

	deleted, err := c.syncService.Cleanup(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		return toHTTPError(err, "could not clean up sync history")
	}
	return ctx.JSON(http.StatusOK, dtos.SyncCleanupResponse{
		Message:      fmt.Sprintf("deleted sync runs older than %d days", days),
		DeletedCount: deleted,
	})
}

// @Summary Fetch a single CVE from the NVD API and store it
// @Tags Sync
// @Produce json
// @Param cveID path string true "CVE id"
// @Success 200 {object} models.Vulnerability
// @Failure 404 {object} object{message=string} "unknown upstream"
// @Router /sync/cves/{cveID}/ [post]
func (c SyncController) RefreshCVE(ctx shared.Context) error {
	cveID, err := cveIDParam(ctx)
	if err != nil {
		return err
	}

	vuln, err := c.syncService.RefreshCVE(ctx.Request().Context(), cveID)
	if err != nil {
		return toHTTPError(err, fmt.Sprintf("could not refresh %s", cveID))
	}
	return ctx.JSON(http.StatusOK, vuln)
}

// @Summary Sync subsystem health
// @Tags Sync
// @Produce json
// @Success 200 {object} dtos.SyncHealthResponse
// @Router /sync/health/ [get]
func (c SyncController) Health(ctx shared.Context) error {
	resp := dtos.SyncHealthResponse{
		Status:      "healthy",
		SyncEnabled: c.syncService.Enabled(),
		Timestamp:   time.Now().UTC(),
	}
	_, resp.SyncRunning = c.syncService.Running()

	if run, err := c.syncRunRepository.Latest(); err == nil {
		resp.LastSync = &run
	} else if !errors.Is(err, shared.ErrNotFound) {
		return toHTTPError(err, "could not get last sync")
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 10*time.Second)
	defer cancel()
	resp.NVDAPIReachable = c.nvdClient.Ping(pingCtx) == nil
	if !resp.NVDAPIReachable {
		resp.Status = "degraded"
	}
	return ctx.JSON(http.StatusOK, resp)
}
