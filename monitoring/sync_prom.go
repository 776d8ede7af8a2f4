// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SyncRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cvesync_sync_run_duration_minutes",
	Help:    "Duration of sync runs in minutes",
	Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 240},
}, []string{"sync_type", "status"})

var SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cvesync_sync_runs_total",
	Help: "The total number of finished sync runs",
}, []string{"sync_type", "status"})

var SyncRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cvesync_sync_records_total",
	Help: "The total number of records processed by sync runs",
}, []string{"outcome"})

var SyncRunning = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cvesync_sync_running",
	Help: "1 while a sync run is active on this instance",
})

var NVDRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cvesync_nvd_requests_total",
	Help: "The total number of requests sent to the NVD API",
}, []string{"result"})

var NVDRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cvesync_nvd_retries_total",
	Help: "The total number of retried NVD API requests",
}, []string{"reason"})

var DaemonTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "cvesync_daemon_tick_duration_seconds",
	Help:    "Duration of a daemon tick in seconds",
	Buckets: prometheus.DefBuckets,
})

var SyncHistoryCleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cvesync_sync_history_cleanup_deleted_total",
	Help: "The total number of sync runs removed by the history cleanup",
})
