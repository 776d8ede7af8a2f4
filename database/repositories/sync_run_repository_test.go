package repositories_test

import (
	"testing"
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
	"github.com/l3montree-dev/cvesync/database/repositories"
	"github.com/l3montree-dev/cvesync/integrationtestutil"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/utils"
	"github.com/stretchr/testify/assert"
)

func TestSyncRunRepository(t *testing.T) {
	db, terminate := integrationtestutil.InitDatabaseContainer(t)
	defer terminate()

	repository := repositories.NewSyncRunRepository(db)

	run := models.SyncRun{SyncType: models.SyncTypeFull, Status: models.SyncStatusRunning, StartedAt: time.Now()}
	assert.NoError(t, repository.Create(nil, &run))

	t.Run("should reject a second running row", func(t *testing.T) {
		second := models.SyncRun{SyncType: models.SyncTypeIncremental, Status: models.SyncStatusRunning, StartedAt: time.Now()}
		err := repository.Create(nil, &second)
		assert.ErrorIs(t, err, shared.ErrSyncAlreadyRunning)
	})

	t.Run("should persist progress", func(t *testing.T) {
		assert.NoError(t, repository.UpdateProgress(run.ID, models.SyncCounters{Total: 10, Processed: 4, New: 3, Updated: 1}))
		stored, err := repository.Read(run.ID)
		assert.NoError(t, err)
		assert.Equal(t, 4, stored.ProcessedRecords)
		assert.Equal(t, 10, stored.TotalRecords)
	})

	hwm := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should finish a running run exactly once", func(t *testing.T) {
		finished, err := repository.Finish(run.ID, models.SyncStatusCompleted, nil, &hwm, models.SyncCounters{Total: 10, Processed: 10, New: 8, Updated: 2})
		assert.NoError(t, err)
		assert.True(t, finished)

		finished, err = repository.Finish(run.ID, models.SyncStatusFailed, utils.Ptr("late"), nil, models.SyncCounters{})
		assert.NoError(t, err)
		assert.False(t, finished)

		stored, err := repository.Read(run.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.SyncStatusCompleted, stored.Status)
		assert.NotNil(t, stored.CompletedAt)
		assert.True(t, stored.LastModifiedDate.Equal(hwm))
	})

	t.Run("should return the latest completed run with a high-water mark", func(t *testing.T) {
		withoutMark := models.SyncRun{SyncType: models.SyncTypeFull, Status: models.SyncStatusRunning, StartedAt: time.Now()}
		assert.NoError(t, repository.Create(nil, &withoutMark))
		_, err := repository.Finish(withoutMark.ID, models.SyncStatusCompleted, nil, nil, models.SyncCounters{})
		assert.NoError(t, err)

		latest, err := repository.LatestCompleted()
		assert.NoError(t, err)
		assert.Equal(t, run.ID, latest.ID)

		newest, err := repository.Latest()
		assert.NoError(t, err)
		assert.Equal(t, withoutMark.ID, newest.ID)
	})

	t.Run("should mark stale running rows as failed", func(t *testing.T) {
		stale := models.SyncRun{SyncType: models.SyncTypeIncremental, Status: models.SyncStatusRunning, StartedAt: time.Now()}
		assert.NoError(t, repository.Create(nil, &stale))

		marked, err := repository.MarkStaleRunning("process restarted")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), marked)

		_, err = repository.Running()
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("should only delete old terminal runs", func(t *testing.T) {
		old := models.SyncRun{SyncType: models.SyncTypeFull, Status: models.SyncStatusRunning, StartedAt: time.Now().AddDate(0, 0, -60)}
		assert.NoError(t, repository.Create(nil, &old))

		// still running, must survive
		deleted, err := repository.DeleteOlderThan(time.Now().AddDate(0, 0, -30))
		assert.NoError(t, err)
		assert.Equal(t, int64(0), deleted)

		_, err = repository.Finish(old.ID, models.SyncStatusCancelled, utils.Ptr("cancelled"), nil, models.SyncCounters{})
		assert.NoError(t, err)

		deleted, err = repository.DeleteOlderThan(time.Now().AddDate(0, 0, -30))
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		history, err := repository.History(100)
		assert.NoError(t, err)
		assert.Len(t, history, 3)
	})
}
