package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sampling metrics
var (
	PassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shuffle_audit_passes_total",
			Help: "Total number of passes recorded and stored",
		},
	)

	PassFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shuffle_audit_pass_failures_total",
			Help: "Total number of passes abandoned on an error",
		},
	)

	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shuffle_audit_pass_duration_seconds",
			Help:    "Time taken to record one pass",
			Buckets: []float64{5, 10, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)

	TracksRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shuffle_audit_tracks_recorded_total",
			Help: "Total number of playing tracks resolved and recorded",
		},
	)

	GuessedTracksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shuffle_audit_guessed_tracks_total",
			Help: "Total number of ambiguous titles resolved by reusing the previous track",
		},
	)

	SameTrackRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shuffle_audit_same_track_retries_total",
			Help: "Total number of re-reads because the player still showed the previous track",
		},
	)
)

// Sample metrics
var (
	StoredPasses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shuffle_audit_stored_passes",
			Help: "Number of passes in the database",
		},
	)

	FirstTrackMean = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shuffle_audit_first_track_mean",
			Help: "Mean catalogue number of the first track over all stored passes",
		},
	)

	TrueMean = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shuffle_audit_true_mean",
			Help: "Mean catalogue number of the tracklist",
		},
	)

	TracklistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shuffle_audit_tracklist_size",
			Help: "Number of tracks in the tracklist",
		},
	)
)
