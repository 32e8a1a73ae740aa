// Package metrics registers the prometheus metrics Grizzly's
// persistence and scheduler layers emit, grounded on the teacher
// indexer's metrics package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotSaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_snapshot_save_total",
			Help: "Total number of snapshot save operations",
		},
		[]string{"status"},
	)

	SnapshotSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grizzly_snapshot_save_duration_seconds",
			Help:    "Duration of snapshot save operations",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	DeltaSaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_delta_save_total",
			Help: "Total number of incremental delta save operations",
		},
		[]string{"status"},
	)

	CompactionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_compaction_total",
			Help: "Total number of delta chain compactions",
		},
		[]string{"status"},
	)

	CodecChosenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_codec_chosen_total",
			Help: "Total number of times each codec was chosen by the codec chooser",
		},
		[]string{"codec"},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_model_refresh_total",
			Help: "Total number of model refresh attempts",
		},
		[]string{"model", "status"},
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grizzly_model_refresh_duration_seconds",
			Help:    "Duration of model refreshes",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"model"},
	)

	ScheduleDisabledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grizzly_schedule_disabled_total",
			Help: "Total number of schedules disabled after exceeding their retry budget",
		},
		[]string{"model"},
	)
)
