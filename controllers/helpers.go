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
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// unprocessable renders validation failures as {message, errors}.
func unprocessable(message string, err error) *echo.HTTPError {
	details := []string{}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			details = append(details, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
		}
	} else if err != nil {
		details = append(details, err.Error())
	}
	return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
		"message": message,
		"errors":  details,
	}).WithInternal(err)
}

func bindAndValidate(ctx shared.Context, v any) error {
	if err := ctx.Bind(v); err != nil {
		return unprocessable("unable to process request", err)
	}
	if err := shared.V.Struct(v); err != nil {
		return unprocessable("could not validate request", err)
	}
	return nil
}

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error, message string) *echo.HTTPError {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, message+": not found").WithInternal(err)
	case errors.Is(err, shared.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, message+": already exists").WithInternal(err)
	case errors.Is(err, shared.ErrInvalidFilter):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).WithInternal(err)
	case errors.Is(err, shared.ErrSyncAlreadyRunning), errors.Is(err, shared.ErrSyncDisabled):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).WithInternal(err)
	}
	slog.Error(message, "err", err)
	return echo.NewHTTPError(http.StatusInternalServerError, message).WithInternal(err)
}

func cveIDParam(ctx shared.Context) (string, error) {
	cveID := utils.NormalizeCVEID(shared.SanitizeParam(shared.GetParam(ctx, "cveID")))
	if !shared.IsValidCVEID(cveID) {
		return "", unprocessable("invalid cve id", errors.Errorf("%q does not match CVE-YYYY-NNNN", cveID))
	}
	return cveID, nil
}

func intParam(ctx shared.Context, name string, lo, hi int) (int, error) {
	raw := shared.SanitizeParam(shared.GetParam(ctx, name))
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, unprocessable(fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi), err)
	}
	return v, nil
}

func floatParam(ctx shared.Context, name string, lo, hi float64) (float64, error) {
	raw := shared.SanitizeParam(shared.GetParam(ctx, name))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return 0, unprocessable(fmt.Sprintf("%s must be a number between %.0f and %.0f", name, lo, hi), err)
	}
	return v, nil
}

// intQuery returns def for a missing parameter.
func intQuery(ctx shared.Context, name string, def, lo, hi int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, unprocessable(fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi), err)
	}
	return v, nil
}

func floatQuery(ctx shared.Context, name string) (*float64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, unprocessable(fmt.Sprintf("%s must be a number", name), err)
	}
	return &v, nil
}

func timeQuery(ctx shared.Context, name string) (*time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseNVDTime(raw)
	if err != nil {
		if d, dateErr := time.Parse(time.DateOnly, raw); dateErr == nil {
			return &d, nil
		}
		return nil, unprocessable(fmt.Sprintf("%s must be a date", name), err)
	}
	return &t, nil
}

func filterFromQuery(ctx shared.Context) (dtos.VulnerabilityFilter, error) {
	filter := dtos.VulnerabilityFilter{
		CVEID:      ctx.QueryParam("cveId"),
		Severity:   ctx.QueryParam("severity"),
		VulnStatus: ctx.QueryParam("vulnStatus"),
		Keyword:    ctx.QueryParam("keyword"),
		SortBy:     ctx.QueryParam("sortBy"),
		SortOrder:  strings.ToLower(ctx.QueryParam("sortOrder")),
	}

	var err error
	if raw := ctx.QueryParam("year"); raw != "" {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return filter, unprocessable("year must be an integer", convErr)
		}
		filter.Year = &year
	}
	if filter.MinScore, err = floatQuery(ctx, "minScore"); err != nil {
		return filter, err
	}
	if filter.MaxScore, err = floatQuery(ctx, "maxScore"); err != nil {
		return filter, err
	}
	if filter.ModifiedSince, err = timeQuery(ctx, "modifiedSince"); err != nil {
		return filter, err
	}
	if filter.PublishedSince, err = timeQuery(ctx, "publishedSince"); err != nil {
		return filter, err
	}

	filter = filter.Normalize()
	if err := shared.V.Struct(filter); err != nil {
		return filter, unprocessable("invalid filter", err)
	}
	if filter.HasInvalidScoreRange() {
		return filter, echo.NewHTTPError(http.StatusBadRequest, "minScore must not be greater than maxScore")
	}
	return filter, nil
}
