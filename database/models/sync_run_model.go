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

package models

import "time"

type SyncType string

const (
	SyncTypeFull        SyncType = "full"
	SyncTypeIncremental SyncType = "incremental"
)

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusCancelled SyncStatus = "cancelled"
)

var TerminalSyncStatuses = []SyncStatus{SyncStatusCompleted, SyncStatusFailed, SyncStatusCancelled}

func (s SyncStatus) IsTerminal() bool {
	switch s {
	case SyncStatusCompleted, SyncStatusFailed, SyncStatusCancelled:
		return true
	}
	return false
}

type SyncRun struct {
	ID               int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	SyncType         SyncType   `json:"syncType" gorm:"type:text;not null;"`
	Status           SyncStatus `json:"status" gorm:"type:text;not null;"`
	StartedAt        time.Time  `json:"startedAt" gorm:"not null;"`
	CompletedAt      *time.Time `json:"completedAt"`
	TotalRecords     int        `json:"totalRecords"`
	ProcessedRecords int        `json:"processedRecords"`
	NewRecords       int        `json:"newRecords"`
	UpdatedRecords   int        `json:"updatedRecords"`
	ErrorMessage     *string    `json:"errorMessage" gorm:"type:text;"`
	// high-water mark: newest upstream last modified date seen by this run
	LastModifiedDate *time.Time `json:"lastModifiedDate"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

type SyncCounters struct {
	Total     int
	Processed int
	New       int
	Updated   int
}

func (c SyncCounters) Apply(run *SyncRun) {
	run.TotalRecords = c.Total
	run.ProcessedRecords = c.Processed
	run.NewRecords = c.New
	run.UpdatedRecords = c.Updated
}
