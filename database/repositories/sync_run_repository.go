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
	"time"

	"github.com/l3montree-dev/cvesync/database"
	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/pkg/errors"
)

type syncRunRepository struct {
	db shared.DB
	*GormRepository[int64, models.SyncRun]
}

func NewSyncRunRepository(db shared.DB) *syncRunRepository {
	return &syncRunRepository{
		db:             db,
		GormRepository: newGormRepository[int64, models.SyncRun](db),
	}
}

// Create inserts the run. The partial unique index on running rows turns a second
// running run into shared.ErrSyncAlreadyRunning.
func (r *syncRunRepository) Create(tx shared.DB, run *models.SyncRun) error {
	err := r.GetDB(tx).Create(run).Error
	if database.IsDuplicateKeyError(err) {
		return errors.Wrap(shared.ErrSyncAlreadyRunning, err.Error())
	}
	return err
}

func (r *syncRunRepository) Read(id int64) (models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.First(&run, "id = ?", id).Error
	return run, notFound(err)
}

func (r *syncRunRepository) Latest() (models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.Order("started_at DESC").Order("id DESC").First(&run).Error
	return run, notFound(err)
}

func (r *syncRunRepository) LatestCompleted() (models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.
		Where("status = ? AND last_modified_date IS NOT NULL", models.SyncStatusCompleted).
		Order("started_at DESC").
		Order("id DESC").
		First(&run).Error
	return run, notFound(err)
}

func (r *syncRunRepository) History(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := r.db.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not read sync history")
	}
	return runs, nil
}

func (r *syncRunRepository) Running() (models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.Where("status = ?", models.SyncStatusRunning).Order("started_at DESC").First(&run).Error
	return run, notFound(err)
}

func (r *syncRunRepository) UpdateProgress(id int64, counters models.SyncCounters) error {
	return r.db.Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", id, models.SyncStatusRunning).
		Updates(counterColumns(counters)).Error
}

// Finish only touches runs that are still running, terminal states are never left.
func (r *syncRunRepository) Finish(id int64, status models.SyncStatus, errorMessage *string, highWaterMark *time.Time, counters models.SyncCounters) (bool, error) {
	if !status.IsTerminal() {
		return false, errors.Errorf("cannot finish sync run with non terminal status %q", status)
	}

	columns := counterColumns(counters)
	columns["status"] = status
	columns["completed_at"] = time.Now()
	columns["error_message"] = errorMessage
	columns["last_modified_date"] = highWaterMark

	res := r.db.Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", id, models.SyncStatusRunning).
		Updates(columns)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "could not finish sync run")
	}
	return res.RowsAffected > 0, nil
}

func (r *syncRunRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.
		Where("status IN ? AND started_at < ?", models.TerminalSyncStatuses, cutoff).
		Delete(&models.SyncRun{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "could not delete old sync runs")
	}
	return res.RowsAffected, nil
}

// MarkStaleRunning fails running rows left behind by a process that died mid sync.
func (r *syncRunRepository) MarkStaleRunning(message string) (int64, error) {
	res := r.db.Model(&models.SyncRun{}).
		Where("status = ?", models.SyncStatusRunning).
		Updates(map[string]any{
			"status":        models.SyncStatusFailed,
			"completed_at":  time.Now(),
			"error_message": message,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "could not mark stale sync runs")
	}
	return res.RowsAffected, nil
}

func counterColumns(counters models.SyncCounters) map[string]any {
	return map[string]any{
		"total_records":     counters.Total,
		"processed_records": counters.Processed,
		"new_records":       counters.New,
		"updated_records":   counters.Updated,
	}
}
