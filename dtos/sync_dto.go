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
	"time"

	"github.com/l3montree-dev/cvesync/database/models"
)

type SyncTriggerRequest struct {
	SyncType models.SyncType `json:"syncType" validate:"omitempty,oneof=full incremental"`
	Force    bool            `json:"force"`
}

type SyncTriggerResponse struct {
	Message  string          `json:"message"`
	SyncID   int64           `json:"syncId"`
	SyncType models.SyncType `json:"syncType"`
}

type SyncRunningResponse struct {
	Running bool            `json:"running"`
	Sync    *models.SyncRun `json:"sync"`
}

type SyncCleanupResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SyncHealthResponse struct {
	Status          string          `json:"status"`
	SyncEnabled     bool            `json:"syncEnabled"`
	SyncRunning     bool            `json:"syncRunning"`
	LastSync        *models.SyncRun `json:"lastSync"`
	NVDAPIReachable bool            `json:"nvdApiReachable"`
	Timestamp       time.Time       `json:"timestamp"`
}

type HealthResponse struct {
	Status            string     `json:"status"`
	Timestamp         time.Time  `json:"timestamp"`
	DatabaseConnected bool       `json:"databaseConnected"`
	LastSync          *time.Time `json:"lastSync"`
	TotalCves         int64      `json:"totalCves"`
	Version           string     `json:"version"`
}

// BatchResult summarizes the upsert of one batch of upstream records.
type BatchResult struct {
	Processed       int
	New             int
	Updated         int
	Failed          int
	MaxLastModified *time.Time
}

func (b *BatchResult) Observe(lastModified *time.Time) {
	if lastModified == nil {
		return
	}
	if b.MaxLastModified == nil || lastModified.After(*b.MaxLastModified) {
		t := *lastModified
		b.MaxLastModified = &t
	}
}
