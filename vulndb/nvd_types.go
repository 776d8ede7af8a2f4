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
	"time"
)

// Page is the response envelope of the cve api
// https://services.nvd.nist.gov/rest/json/cves/2.0
type Page struct {
	ResultsPerPage  int    `json:"resultsPerPage"`
	StartIndex      int    `json:"startIndex"`
	TotalResults    int    `json:"totalResults"`
	Format          string `json:"format"`
	Version         string `json:"version"`
	Timestamp       string `json:"timestamp"`
	Vulnerabilities []Item `json:"vulnerabilities"`
}

// Item is a single entry of the vulnerabilities array.
// Raw keeps the untouched cve object.
type Item struct {
	CVE CVE
	Raw json.RawMessage
}

// UnmarshalJSON never fails. A malformed entry degrades to empty fields and is
// skipped later on, so one bad record never breaks the whole page.
func (i *Item) UnmarshalJSON(b []byte) error {
	var wrapper struct {
		CVE json.RawMessage `json:"cve"`
	}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		slog.Warn("could not decode nvd item", "err", err)
		return nil
	}
	i.Raw = wrapper.CVE
	if len(wrapper.CVE) == 0 || string(wrapper.CVE) == "null" {
		return nil
	}
	if err := json.Unmarshal(wrapper.CVE, &i.CVE); err != nil {
		i.CVE = decodeCVEFields(wrapper.CVE)
	}
	return nil
}

// decodeCVEFields decodes field by field and drops the ones with an unexpected type.
func decodeCVEFields(raw json.RawMessage) CVE {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		slog.Warn("could not decode nvd cve object", "err", err)
		return CVE{}
	}

	str := func(key string) string {
		v, ok := fields[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			slog.Warn("ignoring malformed cve field", "field", key, "value", string(v))
			return ""
		}
		return s
	}

	return CVE{
		ID:               str("id"),
		SourceIdentifier: str("sourceIdentifier"),
		Published:        str("published"),
		LastModified:     str("lastModified"),
		VulnStatus:       str("vulnStatus"),
		Descriptions:     fields["descriptions"],
		Metrics:          fields["metrics"],
		Weaknesses:       fields["weaknesses"],
		Configurations:   fields["configurations"],
		References:       fields["references"],
	}
}

func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return json.Marshal(struct {
			CVE json.RawMessage `json:"cve"`
		}{CVE: i.Raw})
	}
	return json.Marshal(struct {
		CVE CVE `json:"cve"`
	}{CVE: i.CVE})
}

// CVE holds the fields of an upstream record. The nested parts are kept as raw json
// and decoded by the transformer, so a malformed sub-field never fails the whole page.
type CVE struct {
	ID               string          `json:"id"`
	SourceIdentifier string          `json:"sourceIdentifier"`
	Published        string          `json:"published"`
	LastModified     string          `json:"lastModified"`
	VulnStatus       string          `json:"vulnStatus"`
	Descriptions     json.RawMessage `json:"descriptions,omitempty"`
	Metrics          json.RawMessage `json:"metrics,omitempty"`
	Weaknesses       json.RawMessage `json:"weaknesses,omitempty"`
	Configurations   json.RawMessage `json:"configurations,omitempty"`
	References       json.RawMessage `json:"references,omitempty"`
}

type langString struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

type cvssV3Data struct {
	Version               string   `json:"version"`
	VectorString          string   `json:"vectorString"`
	AttackVector          string   `json:"attackVector"`
	AttackComplexity      string   `json:"attackComplexity"`
	PrivilegesRequired    string   `json:"privilegesRequired"`
	UserInteraction       string   `json:"userInteraction"`
	Scope                 string   `json:"scope"`
	ConfidentialityImpact string   `json:"confidentialityImpact"`
	IntegrityImpact       string   `json:"integrityImpact"`
	AvailabilityImpact    string   `json:"availabilityImpact"`
	BaseScore             *float64 `json:"baseScore"`
	BaseSeverity          string   `json:"baseSeverity"`
}

type cvssMetricV3 struct {
	Source              string     `json:"source"`
	Type                string     `json:"type"`
	CvssData            cvssV3Data `json:"cvssData"`
	ExploitabilityScore float64    `json:"exploitabilityScore"`
	ImpactScore         float64    `json:"impactScore"`
}

type cvssMetricV2 struct {
	Source   string `json:"source"`
	Type     string `json:"type"`
	CvssData struct {
		Version               string   `json:"version"`
		VectorString          string   `json:"vectorString"`
		AccessVector          string   `json:"accessVector"`
		AccessComplexity      string   `json:"accessComplexity"`
		Authentication        string   `json:"authentication"`
		ConfidentialityImpact string   `json:"confidentialityImpact"`
		IntegrityImpact       string   `json:"integrityImpact"`
		AvailabilityImpact    string   `json:"availabilityImpact"`
		BaseScore             *float64 `json:"baseScore"`
		BaseSeverity          string   `json:"baseSeverity"`
	} `json:"cvssData"`
	BaseSeverity            string  `json:"baseSeverity"`
	ExploitabilityScore     float64 `json:"exploitabilityScore"`
	ImpactScore             float64 `json:"impactScore"`
	AcInsufInfo             bool    `json:"acInsufInfo"`
	ObtainAllPrivilege      bool    `json:"obtainAllPrivilege"`
	ObtainUserPrivilege     bool    `json:"obtainUserPrivilege"`
	ObtainOtherPrivilege    bool    `json:"obtainOtherPrivilege"`
	UserInteractionRequired bool    `json:"userInteractionRequired"`
}

type nvdMetrics struct {
	CvssMetricV31 []cvssMetricV3 `json:"cvssMetricV31"`
	CvssMetricV30 []cvssMetricV3 `json:"cvssMetricV30"`
	CvssMetricV2  []cvssMetricV2 `json:"cvssMetricV2"`
}

// Filters are the query parameters of the cve api. Zero values are not sent.
type Filters struct {
	PubStartDate      *time.Time
	PubEndDate        *time.Time
	LastModStartDate  *time.Time
	LastModEndDate    *time.Time
	CVEID             string
	CPEName           string
	CVSSV2Severity    string
	CVSSV3Severity    string
	KeywordSearch     string
	KeywordExactMatch bool
	HasCertAlerts     *bool
	HasCertNotes      *bool
	HasKev            *bool
	HasOval           *bool
}

// LastModifiedBetween returns filters selecting records modified in [start, end].
func LastModifiedBetween(start, end time.Time) Filters {
	return Filters{LastModStartDate: &start, LastModEndDate: &end}
}
