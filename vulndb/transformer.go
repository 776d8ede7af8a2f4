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

package vulndb

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/utils"
	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	"gorm.io/datatypes"
)

// Normalize maps an upstream item onto the stored record. It never fails:
// malformed optional fields are dropped and logged.
func Normalize(item Item) models.Vulnerability {
	cve := item.CVE
	id := utils.NormalizeCVEID(cve.ID)

	v := models.Vulnerability{
		CVEID:            id,
		SourceIdentifier: cve.SourceIdentifier,
		VulnStatus:       cve.VulnStatus,
		Published:        parseDate(id, "published", cve.Published),
		LastModified:     parseDate(id, "lastModified", cve.LastModified),
		Description:      pickDescription(id, cve.Descriptions),
		Configurations:   passThrough(cve.Configurations),
		References:       passThrough(cve.References),
		Weaknesses:       passThrough(cve.Weaknesses),
		RawData:          passThrough(item.Raw),
	}

	metrics := decodeMetrics(id, cve.Metrics)
	applyCVSSV3(&v, metrics)
	applyCVSSV2(&v, metrics)

	return v
}

func NormalizeAll(items []Item) []models.Vulnerability {
	return utils.Map(items, Normalize)
}

func parseDate(cveID, field, value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := utils.ParseNVDTime(strings.TrimSpace(value))
	if err != nil {
		slog.Warn("could not parse date", "cveID", cveID, "field", field, "value", value, "err", err)
		return nil
	}
	return &t
}

func pickDescription(cveID string, raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var descriptions []langString
	if err := json.Unmarshal(raw, &descriptions); err != nil {
		slog.Warn("could not decode descriptions", "cveID", cveID, "err", err)
		return nil
	}
	if len(descriptions) == 0 {
		return nil
	}

	chosen := descriptions[0]
	for _, d := range descriptions {
		if strings.EqualFold(d.Lang, "en") {
			chosen = d
			break
		}
	}
	return utils.EmptyThenNil(strings.TrimSpace(chosen.Value))
}

func decodeMetrics(cveID string, raw json.RawMessage) nvdMetrics {
	var metrics nvdMetrics
	if len(raw) == 0 {
		return metrics
	}
	if err := json.Unmarshal(raw, &metrics); err != nil {
		slog.Warn("could not decode metrics", "cveID", cveID, "err", err)
		return nvdMetrics{}
	}
	return metrics
}

func applyCVSSV3(v *models.Vulnerability, metrics nvdMetrics) {
	var (
		metric    cvssMetricV3
		parseable func(string) bool
	)
	switch {
	case len(metrics.CvssMetricV31) > 0:
		metric = metrics.CvssMetricV31[0]
		parseable = func(vector string) bool {
			_, err := gocvss31.ParseVector(vector)
			return err == nil
		}
	case len(metrics.CvssMetricV30) > 0:
		metric = metrics.CvssMetricV30[0]
		parseable = func(vector string) bool {
			_, err := gocvss30.ParseVector(vector)
			return err == nil
		}
	default:
		return
	}

	data := metric.CvssData
	v.CVSSV3Score = validScore(v.CVEID, "cvssV3", data.BaseScore)
	v.CVSSV3Vector = validVector(v.CVEID, "cvssV3", data.VectorString, parseable)
	v.CVSSV3Severity = utils.UpperPtr(utils.EmptyThenNil(data.BaseSeverity))
}

func applyCVSSV2(v *models.Vulnerability, metrics nvdMetrics) {
	if len(metrics.CvssMetricV2) == 0 {
		return
	}
	metric := metrics.CvssMetricV2[0]
	data := metric.CvssData

	v.CVSSV2Score = validScore(v.CVEID, "cvssV2", data.BaseScore)
	v.CVSSV2Vector = validVector(v.CVEID, "cvssV2", data.VectorString, func(vector string) bool {
		_, err := gocvss20.ParseVector(vector)
		return err == nil
	})

	severity := data.BaseSeverity
	if strings.TrimSpace(severity) == "" {
		severity = metric.BaseSeverity
	}
	v.CVSSV2Severity = utils.UpperPtr(utils.EmptyThenNil(severity))
}

func validScore(cveID, kind string, score *float64) *float64 {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > 10 {
		slog.Warn("dropping out of range score", "cveID", cveID, "kind", kind, "score", *score)
		return nil
	}
	s := *score
	return &s
}

func validVector(cveID, kind, vector string, parseable func(string) bool) *string {
	vector = strings.TrimSpace(vector)
	if vector == "" {
		return nil
	}
	if !parseable(vector) {
		slog.Warn("dropping unparseable vector", "cveID", cveID, "kind", kind, "vector", vector)
		return nil
	}
	return &vector
}

func passThrough(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}
