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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func decodeItem(t *testing.T, raw string) Item {
	t.Helper()
	var item Item
	assert.NoError(t, json.Unmarshal([]byte(raw), &item))
	return item
}

func TestNormalize(t *testing.T) {
	t.Run("should map a complete record", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {
			"id": "cve-2021-44228",
			"sourceIdentifier": "security@apache.org",
			"published": "2021-12-10T10:15:09.143",
			"lastModified": "2024-04-03T17:15:08.720Z",
			"vulnStatus": "Analyzed",
			"descriptions": [
				{"lang": "es", "value": "descripcion"},
				{"lang": "EN", "value": "  Apache Log4j2 JNDI features  "}
			],
			"metrics": {
				"cvssMetricV31": [{"cvssData": {"version": "3.1", "vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", "baseScore": 10.0, "baseSeverity": "critical"}}],
				"cvssMetricV2": [{"cvssData": {"version": "2.0", "vectorString": "AV:N/AC:M/Au:N/C:C/I:C/A:C", "baseScore": 9.3}, "baseSeverity": "HIGH"}]
			},
			"weaknesses": [{"source": "nvd@nist.gov", "type": "Primary", "description": [{"lang": "en", "value": "CWE-502"}]}],
			"configurations": [{"nodes": []}],
			"references": [{"url": "https://logging.apache.org"}]
		}}`)

		v := Normalize(item)

		assert.Equal(t, "CVE-2021-44228", v.CVEID)
		assert.Equal(t, "security@apache.org", v.SourceIdentifier)
		assert.Equal(t, "Analyzed", v.VulnStatus)
		assert.Equal(t, time.Date(2021, 12, 10, 10, 15, 9, 143000000, time.UTC), *v.Published)
		assert.Equal(t, time.Date(2024, 4, 3, 17, 15, 8, 720000000, time.UTC), *v.LastModified)
		assert.Equal(t, "Apache Log4j2 JNDI features", *v.Description)

		assert.Equal(t, 10.0, *v.CVSSV3Score)
		assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", *v.CVSSV3Vector)
		assert.Equal(t, "CRITICAL", *v.CVSSV3Severity)

		assert.Equal(t, 9.3, *v.CVSSV2Score)
		assert.Equal(t, "AV:N/AC:M/Au:N/C:C/I:C/A:C", *v.CVSSV2Vector)
		assert.Equal(t, "HIGH", *v.CVSSV2Severity)

		assert.JSONEq(t, `[{"url": "https://logging.apache.org"}]`, string(v.References))
		assert.JSONEq(t, `[{"nodes": []}]`, string(v.Configurations))
		assert.Contains(t, string(v.Weaknesses), "CWE-502")
		assert.Contains(t, string(v.RawData), "cve-2021-44228")
	})

	t.Run("should fall back to cvss 3.0 and the first description", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {
			"id": "CVE-2019-0001",
			"descriptions": [{"lang": "fr", "value": "premier"}],
			"metrics": {
				"cvssMetricV30": [{"cvssData": {"vectorString": "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 9.8, "baseSeverity": "CRITICAL"}}]
			}
		}}`)

		v := Normalize(item)

		assert.Equal(t, "premier", *v.Description)
		assert.Equal(t, 9.8, *v.CVSSV3Score)
		assert.Equal(t, "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", *v.CVSSV3Vector)
		assert.Nil(t, v.CVSSV2Score)
	})

	t.Run("should prefer the v2 severity inside cvssData", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {
			"id": "CVE-2010-0001",
			"metrics": {
				"cvssMetricV2": [{"cvssData": {"vectorString": "AV:N/AC:L/Au:N/C:P/I:P/A:P", "baseScore": 7.5, "baseSeverity": "medium"}, "baseSeverity": "HIGH"}]
			}
		}}`)

		v := Normalize(item)
		assert.Equal(t, "MEDIUM", *v.CVSSV2Severity)
	})

	t.Run("should degrade malformed optional fields to absent values", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {
			"id": "CVE-2020-0002",
			"published": "not a date",
			"lastModified": "",
			"descriptions": "oops",
			"metrics": {
				"cvssMetricV31": [{"cvssData": {"vectorString": "CVSS:3.1/garbage", "baseScore": 11.5, "baseSeverity": "HIGH"}}]
			}
		}}`)

		v := Normalize(item)

		assert.Equal(t, "CVE-2020-0002", v.CVEID)
		assert.Nil(t, v.Published)
		assert.Nil(t, v.LastModified)
		assert.Nil(t, v.Description)
		assert.Nil(t, v.CVSSV3Score)
		assert.Nil(t, v.CVSSV3Vector)
		assert.Equal(t, "HIGH", *v.CVSSV3Severity)
	})

	t.Run("should ignore metrics of the wrong shape", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {"id": "CVE-2020-0003", "metrics": {"cvssMetricV31": "nope"}}}`)

		v := Normalize(item)
		assert.Nil(t, v.CVSSV3Score)
		assert.Nil(t, v.CVSSV2Score)
	})

	t.Run("should return nil for an empty description list", func(t *testing.T) {
		item := decodeItem(t, `{"cve": {"id": "CVE-2020-0004", "descriptions": []}}`)
		assert.Nil(t, Normalize(item).Description)
	})
}
