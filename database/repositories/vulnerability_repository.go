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

package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/dtos"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSortField = "last_modified"

var sortableColumns = []string{
	"cve_id",
	"published",
	"last_modified",
	"cvss_v3_score",
	"cvss_v2_score",
	"created_at",
	"updated_at",
}

// sortColumnAliases accepts the json field names in sortBy as well.
var sortColumnAliases = map[string]string{
	"cveid":        "cve_id",
	"lastmodified": "last_modified",
	"cvssv3score":  "cvss_v3_score",
	"cvssv2score":  "cvss_v2_score",
	"createdat":    "created_at",
	"updatedat":    "updated_at",
}

type vulnerabilityRepository struct {
	db shared.DB
	*GormRepository[int64, models.Vulnerability]
}

func NewVulnerabilityRepository(db shared.DB) *vulnerabilityRepository {
	return &vulnerabilityRepository{
		db:             db,
		GormRepository: newGormRepository[int64, models.Vulnerability](db),
	}
}

func (r *vulnerabilityRepository) Create(tx shared.DB, vuln *models.Vulnerability) error {
	vuln.CVEID = utils.NormalizeCVEID(vuln.CVEID)
	return r.GormRepository.Create(tx, vuln)
}

func (r *vulnerabilityRepository) Read(cveID string) (models.Vulnerability, error) {
	var vuln models.Vulnerability
	err := r.db.First(&vuln, "cve_id = ?", utils.NormalizeCVEID(cveID)).Error
	return vuln, notFound(err)
}

func (r *vulnerabilityRepository) readWithTx(tx shared.DB, cveID string) (models.Vulnerability, error) {
	var vuln models.Vulnerability
	err := r.GetDB(tx).First(&vuln, "cve_id = ?", cveID).Error
	return vuln, notFound(err)
}

// Update applies the column updates. The bool is false if no record with this id exists.
func (r *vulnerabilityRepository) Update(tx shared.DB, cveID string, updates map[string]any) (models.Vulnerability, bool, error) {
	cveID = utils.NormalizeCVEID(cveID)
	if len(updates) == 0 {
		vuln, err := r.readWithTx(tx, cveID)
		if errors.Is(err, shared.ErrNotFound) {
			return models.Vulnerability{}, false, nil
		}
		return vuln, err == nil, err
	}

	updates["updated_at"] = time.Now()
	res := r.GetDB(tx).Model(&models.Vulnerability{}).Where("cve_id = ?", cveID).Updates(updates)
	if res.Error != nil {
		return models.Vulnerability{}, false, errors.Wrap(res.Error, "could not update vulnerability")
	}
	if res.RowsAffected == 0 {
		return models.Vulnerability{}, false, nil
	}

	vuln, err := r.readWithTx(tx, cveID)
	if err != nil {
		return models.Vulnerability{}, false, err
	}
	return vuln, true, nil
}

func (r *vulnerabilityRepository) Delete(tx shared.DB, cveID string) (bool, error) {
	res := r.GetDB(tx).Where("cve_id = ?", utils.NormalizeCVEID(cveID)).Delete(&models.Vulnerability{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "could not delete vulnerability")
	}
	return res.RowsAffected > 0, nil
}

func (r *vulnerabilityRepository) List(filter dtos.VulnerabilityFilter, pageInfo shared.PageInfo) (shared.Paged[models.Vulnerability], error) {
	filter = filter.Normalize()
	order, err := orderClause(filter)
	if err != nil {
		return shared.Paged[models.Vulnerability]{}, err
	}

	query := func() (*gorm.DB, error) {
		return applyVulnerabilityFilter(r.db.Model(&models.Vulnerability{}), filter)
	}

	countQuery, err := query()
	if err != nil {
		return shared.Paged[models.Vulnerability]{}, err
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paged[models.Vulnerability]{}, errors.Wrap(err, "could not count vulnerabilities")
	}

	listQuery, err := query()
	if err != nil {
		return shared.Paged[models.Vulnerability]{}, err
	}
	var vulns []models.Vulnerability
	if err := pageInfo.ApplyOnDB(listQuery.Order(order)).Find(&vulns).Error; err != nil {
		return shared.Paged[models.Vulnerability]{}, errors.Wrap(err, "could not list vulnerabilities")
	}

	return shared.NewPaged(pageInfo, total, vulns), nil
}

func (r *vulnerabilityRepository) Count(filter dtos.VulnerabilityFilter) (int64, error) {
	q, err := applyVulnerabilityFilter(r.db.Model(&models.Vulnerability{}), filter.Normalize())
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "could not count vulnerabilities")
	}
	return total, nil
}

// Search matches the term against the identifier and the description, newest first.
func (r *vulnerabilityRepository) Search(term string, limit int) ([]models.Vulnerability, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	var vulns []models.Vulnerability
	err := r.db.
		Where("cve_id ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("published DESC NULLS LAST").
		Order("cve_id ASC").
		Limit(limit).
		Find(&vulns).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not search vulnerabilities")
	}
	return vulns, nil
}

// Upsert inserts vuln or overwrites the stored record when vuln.LastModified is strictly newer.
// A record without last modified date never overwrites.
func (r *vulnerabilityRepository) Upsert(ctx context.Context, tx shared.DB, vuln *models.Vulnerability) (string, models.UpsertOutcome, error) {
	db := r.GetDB(tx).WithContext(ctx)
	now := time.Now()

	vuln.CVEID = utils.NormalizeCVEID(vuln.CVEID)
	vuln.CreatedAt = now
	vuln.UpdatedAt = now

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cve_id"}},
		DoNothing: true,
	}).Create(vuln)
	if res.Error != nil {
		return vuln.CVEID, models.UpsertUnchanged, errors.Wrapf(res.Error, "could not insert %s", vuln.CVEID)
	}
	if res.RowsAffected > 0 {
		return vuln.CVEID, models.UpsertCreated, nil
	}

	if vuln.LastModified == nil {
		return vuln.CVEID, models.UpsertUnchanged, nil
	}

	res = db.Model(&models.Vulnerability{}).
		Where("cve_id = ? AND (last_modified IS NULL OR last_modified < ?)", vuln.CVEID, *vuln.LastModified).
		Updates(upsertColumns(vuln, now))
	if res.Error != nil {
		return vuln.CVEID, models.UpsertUnchanged, errors.Wrapf(res.Error, "could not update %s", vuln.CVEID)
	}
	if res.RowsAffected > 0 {
		return vuln.CVEID, models.UpsertUpdated, nil
	}
	return vuln.CVEID, models.UpsertUnchanged, nil
}

func upsertColumns(vuln *models.Vulnerability, now time.Time) map[string]any {
	return map[string]any{
		"source_identifier": vuln.SourceIdentifier,
		"vuln_status":       vuln.VulnStatus,
		"published":         vuln.Published,
		"last_modified":     vuln.LastModified,
		"description":       vuln.Description,
		"cvss_v2_score":     vuln.CVSSV2Score,
		"cvss_v2_vector":    vuln.CVSSV2Vector,
		"cvss_v2_severity":  vuln.CVSSV2Severity,
		"cvss_v3_score":     vuln.CVSSV3Score,
		"cvss_v3_vector":    vuln.CVSSV3Vector,
		"cvss_v3_severity":  vuln.CVSSV3Severity,
		"configurations":    vuln.Configurations,
		"cve_references":    vuln.References,
		"weaknesses":        vuln.Weaknesses,
		"raw_data":          vuln.RawData,
		"updated_at":        now,
	}
}

type statisticsRow struct {
	Total          int64
	Critical       int64
	High           int64
	Medium         int64
	Low            int64
	Unscored       int64
	LastUpdated    *time.Time
	TodayPublished int64
	WeekPublished  int64
	MonthPublished int64
}

func (r *vulnerabilityRepository) Statistics(now time.Time) (dtos.VulnerabilityStatistics, error) {
	now = now.UTC()
	var row statisticsRow
	err := r.db.Raw(`SELECT
		count(*) AS total,
		count(*) FILTER (WHERE upper(cvss_v3_severity) = ?) AS critical,
		count(*) FILTER (WHERE upper(cvss_v3_severity) = ?) AS high,
		count(*) FILTER (WHERE upper(cvss_v3_severity) = ?) AS medium,
		count(*) FILTER (WHERE upper(cvss_v3_severity) = ?) AS low,
		count(*) FILTER (WHERE cvss_v3_score IS NULL) AS unscored,
		max(updated_at) AS last_updated,
		count(*) FILTER (WHERE published >= ?) AS today_published,
		count(*) FILTER (WHERE published >= ?) AS week_published,
		count(*) FILTER (WHERE published >= ?) AS month_published
	FROM vulnerabilities`,
		string(models.SeverityCritical),
		string(models.SeverityHigh),
		string(models.SeverityMedium),
		string(models.SeverityLow),
		utils.StartOfDay(now),
		now.AddDate(0, 0, -7),
		now.AddDate(0, 0, -30),
	).Scan(&row).Error
	if err != nil {
		return dtos.VulnerabilityStatistics{}, errors.Wrap(err, "could not compute statistics")
	}

	return dtos.VulnerabilityStatistics{
		TotalCves:      row.Total,
		CriticalCves:   row.Critical,
		HighCves:       row.High,
		MediumCves:     row.Medium,
		LowCves:        row.Low,
		UnscoredCves:   row.Unscored,
		LastUpdated:    row.LastUpdated,
		TodayPublished: row.TodayPublished,
		WeekPublished:  row.WeekPublished,
		MonthPublished: row.MonthPublished,
	}, nil
}

func (r *vulnerabilityRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// applyVulnerabilityFilter adds the WHERE conditions of the filter. Conditions compose with AND.
func applyVulnerabilityFilter(db *gorm.DB, filter dtos.VulnerabilityFilter) (*gorm.DB, error) {
	if filter.HasInvalidScoreRange() {
		return nil, errors.Wrap(shared.ErrInvalidFilter, "minScore must not be greater than maxScore")
	}

	if filter.CVEID != "" {
		db = db.Where("cve_id = ?", utils.NormalizeCVEID(filter.CVEID))
	}
	if filter.Year != nil {
		from := time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		db = db.Where("published >= ? AND published < ?", from, from.AddDate(1, 0, 0))
	}
	if filter.MinScore != nil {
		db = db.Where("cvss_v3_score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		db = db.Where("cvss_v3_score <= ?", *filter.MaxScore)
	}
	if filter.Severity != "" {
		db = db.Where("upper(cvss_v3_severity) = ?", strings.ToUpper(filter.Severity))
	}
	if filter.VulnStatus != "" {
		db = db.Where("vuln_status = ?", filter.VulnStatus)
	}
	if filter.ModifiedSince != nil {
		db = db.Where("last_modified >= ?", *filter.ModifiedSince)
	}
	if filter.PublishedSince != nil {
		db = db.Where("published >= ?", *filter.PublishedSince)
	}
	if filter.Keyword != "" {
		db = db.Where("description ILIKE ?", "%"+escapeLike(filter.Keyword)+"%")
	}
	return db, nil
}

// orderClause validates the sort field against the whitelist. Default is last_modified desc.
func orderClause(filter dtos.VulnerabilityFilter) (string, error) {
	field, err := sortColumn(filter.SortBy)
	if err != nil {
		return "", err
	}

	direction := "DESC"
	switch strings.ToLower(filter.SortOrder) {
	case "", "desc":
	case "asc":
		direction = "ASC"
	default:
		return "", errors.Wrapf(shared.ErrInvalidFilter, "invalid sort order %q", filter.SortOrder)
	}

	return fmt.Sprintf("%s %s NULLS LAST, cve_id ASC", field, direction), nil
}

func sortColumn(sortBy string) (string, error) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		return defaultSortField, nil
	}
	if utils.Contains(sortableColumns, sortBy) {
		return sortBy, nil
	}
	if column, ok := sortColumnAliases[strings.ToLower(sortBy)]; ok {
		return column, nil
	}
	if strings.EqualFold(sortBy, "published") {
		return "published", nil
	}
	return "", errors.Wrapf(shared.ErrInvalidFilter, "cannot sort by %q", sortBy)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
