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

package utils

import (
	"time"
)

const ISO8601Format = "2006-01-02T15:04:05.000"

// NVDDateFormat is the layout the cve api expects for date range parameters.
const NVDDateFormat = "2006-01-02T15:04:05.000-07:00"

var nvdParseLayouts = []string{
	time.RFC3339Nano,
	ISO8601Format,
	"2006-01-02T15:04:05",
}

// ParseNVDTime parses the timestamps returned by the cve api.
// Timestamps without a zone are read as UTC.
func ParseNVDTime(s string) (time.Time, error) {
	var err error
	for _, layout := range nvdParseLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func FormatNVDTime(t time.Time) string {
	return t.UTC().Format(NVDDateFormat)
}

func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
