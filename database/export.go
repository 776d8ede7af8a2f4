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

package database

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exportQuery = `SELECT cve_id, source_identifier, vuln_status, published, last_modified,
	cvss_v3_score::float8 AS cvss_v3_score, cvss_v3_severity, cvss_v3_vector,
	cvss_v2_score::float8 AS cvss_v2_score, cvss_v2_severity, cvss_v2_vector,
	description
FROM vulnerabilities
WHERE $1::timestamptz IS NULL OR last_modified >= $1
ORDER BY cve_id`

// ExportVulnerabilitiesCSV writes the mirrored records as csv, optionally only those modified at or after since.
// It returns the number of exported rows.
func ExportVulnerabilitiesCSV(ctx context.Context, pool *pgxpool.Pool, w io.Writer, since *time.Time) (int, error) {
	rows, err := pool.Query(ctx, exportQuery, since)
	if err != nil {
		return 0, fmt.Errorf("could not query vulnerabilities: %w", err)
	}
	defer rows.Close()
	return rowsToCSV(rows, w)
}

// converts a query from pgx to csv
func rowsToCSV(rows pgx.Rows, w io.Writer) (int, error) {
	csvWriter := csv.NewWriter(w)

	// first make the line with the column names
	columnNames := rows.FieldDescriptions()
	headers := make([]string, len(columnNames))
	for i, column := range columnNames {
		headers[i] = column.Name
	}
	if err := csvWriter.Write(headers); err != nil {
		return 0, err
	}

	written := 0
	record := make([]string, len(headers))
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			slog.Warn("could not scan row, continuing...", "err", err)
			continue
		}
		for i, value := range values {
			record[i] = anyToString(value)
		}
		if err := csvWriter.Write(record); err != nil {
			return written, err
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, err
	}

	csvWriter.Flush()
	return written, csvWriter.Error()
}

// convert common data types to string so it can be written to csv
func anyToString(value any) string {
	if value == nil {
		return ""
	}
	switch t := value.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		b, err := json.Marshal(t)
		if err == nil {
			return string(b)
		}
		return fmt.Sprint(t)
	}
}
