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

package dtos

import (
	"strings"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/utils"
	"gorm.io/datatypes"
)

type VulnerabilityFilter struct {
	CVEID          string     `json:"cveId,omitempty" validate:"omitempty,cveid"`
	Year           *int       `json:"year,omitempty" validate:"omitempty,min=1999,max=2030"`
	MinScore       *float64   `json:"minScore,omitempty" validate:"omitempty,min=0,max=10"`
	MaxScore       *float64   `json:"maxScore,omitempty" validate:"omitempty,min=0,max=10"`
	Severity       string     `json:"severity,omitempty" validate:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW NONE"`
	VulnStatus     string     `json:"vulnStatus,omitempty"`
	ModifiedSince  *time.Time `json:"modifiedSince,omitempty"`
	PublishedSince *time.Time `json:"publishedSince,omitempty"`
	Keyword        string     `json:"keyword,omitempty"`
	SortBy         string     `json:"sortBy,omitempty"`
	SortOrder      string     `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Normalize uppercases identifiers and severities and lowercases the sort order.
func (f VulnerabilityFilter) Normalize() VulnerabilityFilter {
	if f.CVEID != "" {
		f.CVEID = utils.NormalizeCVEID(f.CVEID)
	}
	f.Severity = strings.ToUpper(strings.TrimSpace(f.Severity))
	f.SortOrder = strings.ToLower(strings.TrimSpace(f.SortOrder))
	f.Keyword = strings.TrimSpace(f.Keyword)
	return f
}

// HasInvalidScoreRange reports a minimum score greater than the maximum score.
func (f VulnerabilityFilter) HasInvalidScoreRange() bool {
	return f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore
}

type VulnerabilityCreateRequest struct {
	CVEID            string         `json:"cveId" validate:"required,cveid"`
	SourceIdentifier string         `json:"sourceIdentifier"`
	VulnStatus       string         `json:"vulnStatus"`
	Published        *time.Time     `json:"published"`
	LastModified     *time.Time     `json:"lastModified"`
	Description      *string        `json:"description"`
	CVSSV2Score      *float64       `json:"cvssV2Score" validate:"omitempty,min=0,max=10"`
	CVSSV2Vector     *string        `json:"cvssV2Vector"`
	CVSSV2Severity   *string        `json:"cvssV2Severity"`
	CVSSV3Score      *float64       `json:"cvssV3Score" validate:"omitempty,min=0,max=10"`
	CVSSV3Vector     *string        `json:"cvssV3Vector"`
	CVSSV3Severity   *string        `json:"cvssV3Severity"`
	Configurations   datatypes.JSON `json:"configurations"`
	References       datatypes.JSON `json:"references"`
	Weaknesses       datatypes.JSON `json:"weaknesses"`
}

func (r VulnerabilityCreateRequest) ToModel() models.Vulnerability {
	return models.Vulnerability{
		CVEID:            utils.NormalizeCVEID(r.CVEID),
		SourceIdentifier: r.SourceIdentifier,
		VulnStatus:       r.VulnStatus,
		Published:        r.Published,
		LastModified:     r.LastModified,
		Description:      r.Description,
		CVSSV2Score:      r.CVSSV2Score,
		CVSSV2Vector:     r.CVSSV2Vector,
		CVSSV2Severity:   utils.UpperPtr(r.CVSSV2Severity),
		CVSSV3Score:      r.CVSSV3Score,
		CVSSV3Vector:     r.CVSSV3Vector,
		CVSSV3Severity:   utils.UpperPtr(r.CVSSV3Severity),
		Configurations:   r.Configurations,
		References:       r.References,
		Weaknesses:       r.Weaknesses,
	}
}

// VulnerabilityUpdateRequest is a patch. Only the provided fields are written.
type VulnerabilityUpdateRequest struct {
	SourceIdentifier *string        `json:"sourceIdentifier"`
	VulnStatus       *string        `json:"vulnStatus"`
	Published        *time.Time     `json:"published"`
	LastModified     *time.Time     `json:"lastModified"`
	Description      *string        `json:"description"`
	CVSSV2Score      *float64       `json:"cvssV2Score" validate:"omitempty,min=0,max=10"`
	CVSSV2Vector     *string        `json:"cvssV2Vector"`
	CVSSV2Severity   *string        `json:"cvssV2Severity"`
	CVSSV3Score      *float64       `json:"cvssV3Score" validate:"omitempty,min=0,max=10"`
	CVSSV3Vector     *string        `json:"cvssV3Vector"`
	CVSSV3Severity   *string        `json:"cvssV3Severity"`
	Configurations   datatypes.JSON `json:"configurations"`
	References       datatypes.JSON `json:"references"`
	Weaknesses       datatypes.JSON `json:"weaknesses"`
}

// ToUpdates maps the patch onto column names.
func (r VulnerabilityUpdateRequest) ToUpdates() map[string]any {
	updates := map[string]any{}
	if r.SourceIdentifier != nil {
		updates["source_identifier"] = *r.SourceIdentifier
	}
	if r.VulnStatus != nil {
		updates["vuln_status"] = *r.VulnStatus
	}
	if r.Published != nil {
		updates["published"] = *r.Published
	}
	if r.LastModified != nil {
		updates["last_modified"] = *r.LastModified
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.CVSSV2Score != nil {
		updates["cvss_v2_score"] = *r.CVSSV2Score
	}
	if r.CVSSV2Vector != nil {
		updates["cvss_v2_vector"] = *r.CVSSV2Vector
	}
	if r.CVSSV2Severity != nil {
		updates["cvss_v2_severity"] = strings.ToUpper(*r.CVSSV2Severity)
	}
	if r.CVSSV3Score != nil {
		updates["cvss_v3_score"] = *r.CVSSV3Score
	}
	if r.CVSSV3Vector != nil {
		updates["cvss_v3_vector"] = *r.CVSSV3Vector
	}
	if r.CVSSV3Severity != nil {
		updates["cvss_v3_severity"] = strings.ToUpper(*r.CVSSV3Severity)
	}
	if r.Configurations != nil {
		updates["configurations"] = r.Configurations
	}
	if r.References != nil {
		updates["cve_references"] = r.References
	}
	if r.Weaknesses != nil {
		updates["weaknesses"] = r.Weaknesses
	}
	return updates
}

type CountResponse struct {
	Count int64 `json:"count"`
}
