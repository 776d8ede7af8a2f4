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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/mocks"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSyncController(t *testing.T) (*SyncController, *mocks.SyncService, *mocks.SyncRunRepository, *mocks.NVDClient) {
	syncService := mocks.NewSyncService(t)
	runs := mocks.NewSyncRunRepository(t)
	client := mocks.NewNVDClient(t)
	return NewSyncController(syncService, runs, client), syncService, runs, client
}

func TestSyncControllerTrigger(t *testing.T) {
	e := echo.New()

	t.Run("should default to an incremental sync and answer 202", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("Trigger", mock.Anything, models.SyncTypeIncremental, false).Return(int64(3), nil)

		rec := httptest.NewRecorder()
		err := c.Trigger(e.NewContext(httptest.NewRequest(http.MethodPost, "/sync/", nil), rec))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"syncId":3`)
	})

	t.Run("should answer 400 when a sync is already running", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("Trigger", mock.Anything, models.SyncTypeFull, false).Return(int64(0), shared.ErrSyncAlreadyRunning)

		req := httptest.NewRequest(http.MethodPost, "/sync/", strings.NewReader(`{"syncType":"full"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		err := c.Trigger(e.NewContext(req, httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("should answer 422 for an unknown sync type", func(t *testing.T) {
		c, _, _, _ := newSyncController(t)

		req := httptest.NewRequest(http.MethodPost, "/sync/", strings.NewReader(`{"syncType":"partial"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		err := c.Trigger(e.NewContext(req, httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusUnprocessableEntity)
	})
}

func TestSyncControllerCancel(t *testing.T) {
	e := echo.New()

	t.Run("should answer 404 when nothing is running", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("Cancel", mock.Anything).Return(false, nil)

		err := c.Cancel(e.NewContext(httptest.NewRequest(http.MethodPost, "/sync/cancel/", nil), httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusNotFound)
	})

	t.Run("should answer 200 after cancelling", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("Cancel", mock.Anything).Return(true, nil)

		rec := httptest.NewRecorder()
		err := c.Cancel(e.NewContext(httptest.NewRequest(http.MethodPost, "/sync/cancel/", nil), rec))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSyncControllerStatus(t *testing.T) {
	e := echo.New()

	t.Run("should answer 404 without any run", func(t *testing.T) {
		c, _, runs, _ := newSyncController(t)
		runs.On("Latest").Return(models.SyncRun{}, shared.ErrNotFound)

		err := c.Status(e.NewContext(httptest.NewRequest(http.MethodGet, "/sync/status/", nil), httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusNotFound)
	})

	t.Run("should report live counters of the active run", func(t *testing.T) {
		c, syncService, runs, _ := newSyncController(t)
		runs.On("Read", int64(4)).Return(models.SyncRun{ID: 4, Status: models.SyncStatusRunning}, nil)
		syncService.On("Running").Return(&models.SyncRun{ID: 4, Status: models.SyncStatusRunning, ProcessedRecords: 1500}, true)

		rec := httptest.NewRecorder()
		err := c.Status(e.NewContext(httptest.NewRequest(http.MethodGet, "/sync/status/?syncId=4", nil), rec))
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), `"processedRecords":1500`)
	})
}

func TestSyncControllerHistory(t *testing.T) {
	e := echo.New()
	c, _, runs, _ := newSyncController(t)

	runs.On("History", 20).Return([]models.SyncRun{{ID: 2}, {ID: 1}}, nil)
	rec := httptest.NewRecorder()
	assert.NoError(t, c.History(e.NewContext(httptest.NewRequest(http.MethodGet, "/sync/history/", nil), rec)))

	err := c.History(e.NewContext(httptest.NewRequest(http.MethodGet, "/sync/history/?limit=101", nil), httptest.NewRecorder()))
	assertHTTPError(t, err, http.StatusUnprocessableEntity)
}

func TestSyncControllerHealth(t *testing.T) {
	e := echo.New()
	c, syncService, runs, client := newSyncController(t)

	syncService.On("Enabled").Return(true)
	syncService.On("Running").Return((*models.SyncRun)(nil), false)
	runs.On("Latest").Return(models.SyncRun{}, shared.ErrNotFound)
	client.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	assert.NoError(t, c.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/sync/health/", nil).WithContext(context.Background()), rec)))
	assert.Contains(t, rec.Body.String(), `"nvdApiReachable":false`)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestSyncControllerRefreshCVE(t *testing.T) {
	e := echo.New()
	refreshContext := func(cveID string, rec *httptest.ResponseRecorder) echo.Context {
		ctx := e.NewContext(httptest.NewRequest(http.MethodPost, "/sync/cves/"+cveID+"/", nil), rec)
		ctx.SetParamNames("cveID")
		ctx.SetParamValues(cveID)
		return ctx
	}

	t.Run("should return the refreshed record", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("RefreshCVE", mock.Anything, "CVE-2024-1234").Return(models.Vulnerability{CVEID: "CVE-2024-1234"}, nil).Once()

		rec := httptest.NewRecorder()
		assert.NoError(t, c.RefreshCVE(refreshContext("cve-2024-1234", rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"cveId":"CVE-2024-1234"`)
	})

	t.Run("should answer 404 if upstream does not know the id", func(t *testing.T) {
		c, syncService, _, _ := newSyncController(t)
		syncService.On("RefreshCVE", mock.Anything, "CVE-2024-9999").Return(models.Vulnerability{}, errors.Wrap(shared.ErrNotFound, "cve not found upstream")).Once()

		err := c.RefreshCVE(refreshContext("CVE-2024-9999", httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusNotFound)
	})

	t.Run("should answer 422 for a malformed id", func(t *testing.T) {
		c, _, _, _ := newSyncController(t)

		err := c.RefreshCVE(refreshContext("not-a-cve", httptest.NewRecorder()))
		assertHTTPError(t, err, http.StatusUnprocessableEntity)
	})
}
