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
	"net/http"
	"strings"

	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/labstack/echo/v4"
)

type VulnerabilityController struct {
	vulnerabilityService shared.VulnerabilityService
}

func NewVulnerabilityController(vulnerabilityService shared.VulnerabilityService) *VulnerabilityController {
	return &VulnerabilityController{
		vulnerabilityService: vulnerabilityService,
	}
}

// @Summary List CVEs
// @Tags CVE
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Number of items per page (max 100)"
// @Param cveId query string false "Exact CVE id"
// @Param year query int false "Publication year"
// @Param minScore query number false "Minimum CVSS v3 score"
// @Param maxScore query number false "Maximum CVSS v3 score"
// @Param severity query string false "CVSS v3 severity"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} object{pageSize=int,page=int,total=int,hasNext=bool,hasPrev=bool,data=[]models.Vulnerability}
// @Failure 400 {object} object{message=string}
// @Router /cves/ [get]
func (c VulnerabilityController) List(ctx shared.Context) error {
	filter, err := filterFromQuery(ctx)
	if err != nil {
		return err
	}

	paged, err := c.vulnerabilityService.List(filter, shared.GetPageInfo(ctx))
	if err != nil {
		return toHTTPError(err, "could not list cves")
	}
	return ctx.JSON(http.StatusOK, paged)
}

// @Summary Count CVEs matching the list filters
// @Tags CVE
// @Produce json
// @Success 200 {object} dtos.CountResponse
// @Router /cves/count/ [get]
func (c VulnerabilityController) Count(ctx shared.Context) error {
	filter, err := filterFromQuery(ctx)
	if err != nil {
		return err
	}

	count, err := c.vulnerabilityService.Count(filter)
	if err != nil {
		return toHTTPError(err, "could not count cves")
	}
	return ctx.JSON(http.StatusOK, dtos.CountResponse{Count: count})
}

// @Summary Aggregated CVE statistics
// @Tags CVE
// @Produce json
// @Success 200 {object} dtos.VulnerabilityStatistics
// @Router /cves/statistics/ [get]
func (c VulnerabilityController) Statistics(ctx shared.Context) error {
	stats, err := c.vulnerabilityService.Statistics()
	if err != nil {
		return toHTTPError(err, "could not compute statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// @Summary Search CVEs by id or description
// @Tags CVE
// @Produce json
// @Param q query string true "Search term, at least 3 characters"
// @Param limit query int false "Maximum number of results (1..1000)"
// @Success 200 {array} models.Vulnerability
// @Router /cves/search/ [get]
func (c VulnerabilityController) Search(ctx shared.Context) error {
	term := strings.TrimSpace(ctx.QueryParam("q"))
	if len(term) < 3 {
		return unprocessable("q must contain at least 3 characters", nil)
	}
	limit, err := intQuery(ctx, "limit", 100, 1, 1000)
	if err != nil {
		return err
	}

	result, err := c.vulnerabilityService.Search(term, limit)
	if err != nil {
		return toHTTPError(err, "could not search cves")
	}
	return ctx.JSON(http.StatusOK, result)
}

// @Summary CVEs published in a year
// @Tags CVE
// @Produce json
// @Param year path int true "Year (1999..2030)"
// @Router /cves/year/{year}/ [get]
func (c VulnerabilityController) ByYear(ctx shared.Context) error {
	year, err := intParam(ctx, "year", 1999, 2030)
	if err != nil {
		return err
	}

	paged, err := c.vulnerabilityService.ByYear(year, shared.GetPageInfo(ctx))
	if err != nil {
		return toHTTPError(err, "could not list cves")
	}
	return ctx.JSON(http.StatusOK, paged)
}

// @Summary CVEs within a CVSS v3 score range, highest first
// @Tags CVE
// @Produce json
// @Param min path number true "Minimum score"
// @Param max path number true "Maximum score"
// @Failure 400 {object} object{message=string} "min is greater than max"
// @Router /cves/score/{min}/{max}/ [get]
func (c VulnerabilityController) ByScoreRange(ctx shared.Context) error {
	minScore, err := floatParam(ctx, "min", 0, 10)
	if err != nil {
		return err
	}
	maxScore, err := floatParam(ctx, "max", 0, 10)
	if err != nil {
		return err
	}
	if minScore > maxScore {
		return echo.NewHTTPError(http.StatusBadRequest, "min must not be greater than max")
	}

	paged, err := c.vulnerabilityService.ByScoreRange(minScore, maxScore, shared.GetPageInfo(ctx))
	if err != nil {
		return toHTTPError(err, "could not list cves")
	}
	return ctx.JSON(http.StatusOK, paged)
}

// @Summary CVEs modified in the last days
// @Tags CVE
// @Produce json
// @Param days path int true "Days (1..365)"
// @Router /cves/modified/{days}/ [get]
func (c VulnerabilityController) RecentlyModified(ctx shared.Context) error {
	days, err := intParam(ctx, "days", 1, 365)
	if err != nil {
		return err
	}

	paged, err := c.vulnerabilityService.RecentlyModified(days, shared.GetPageInfo(ctx))
	if err != nil {
		return toHTTPError(err, "could not list cves")
	}
	return ctx.JSON(http.StatusOK, paged)
}

// @Summary Get a CVE
// @Tags CVE
// @Produce json
// @Param cveID path string true "CVE id, case insensitive"
// @Success 200 {object} models.Vulnerability
// @Failure 404 {object} object{message=string}
// @Failure 422 {object} object{message=string,errors=[]string}
// @Router /cves/{cveID}/ [get]
func (c VulnerabilityController) Read(ctx shared.Context) error {
	cveID, err := cveIDParam(ctx)
	if err != nil {
		return err
	}

	vuln, err := c.vulnerabilityService.Read(cveID)
	if err != nil {
		return toHTTPError(err, "could not get cve "+cveID)
	}
	return ctx.JSON(http.StatusOK, vuln)
}

// @Summary Create a CVE
// @Tags CVE
// @Accept json
// @Produce json
// @Param body body dtos.VulnerabilityCreateRequest true "CVE"
// @Success 201 {object} models.Vulnerability
// @Failure 400 {object} object{message=string} "CVE already exists"
// @Router /cves/ [post]
func (c VulnerabilityController) Create(ctx shared.Context) error {
	var req dtos.VulnerabilityCreateRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	vuln, err := c.vulnerabilityService.Create(req)
	if err != nil {
		return toHTTPError(err, "could not create cve "+req.CVEID)
	}
	return ctx.JSON(http.StatusCreated, vuln)
}

// @Summary Update a CVE
// @Tags CVE
// @Accept json
// @Produce json
// @Param cveID path string true "CVE id"
// @Param body body dtos.VulnerabilityUpdateRequest true "Fields to change"
// @Success 200 {object} models.Vulnerability
// @Router /cves/{cveID}/ [put]
func (c VulnerabilityController) Update(ctx shared.Context) error {
	cveID, err := cveIDParam(ctx)
	if err != nil {
		return err
	}

	var req dtos.VulnerabilityUpdateRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	vuln, err := c.vulnerabilityService.Update(cveID, req)
	if err != nil {
		return toHTTPError(err, "could not update cve "+cveID)
	}
	return ctx.JSON(http.StatusOK, vuln)
}

// @Summary Delete a CVE
// @Tags CVE
// @Param cveID path string true "CVE id"
// @Success 204
// @Router /cves/{cveID}/ [delete]
func (c VulnerabilityController) Delete(ctx shared.Context) error {
	cveID, err := cveIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.vulnerabilityService.Delete(cveID); err != nil {
		return toHTTPError(err, "could not delete cve "+cveID)
	}
	return ctx.NoContent(http.StatusNoContent)
}
