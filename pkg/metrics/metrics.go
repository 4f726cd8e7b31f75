package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// acquire latency - histogram to track p50/p90/p99
	// registry acquires are in-memory and should sit in the low microseconds;
	// a fat tail means mutex contention
	// labels: kind (exclusive/shared)
	AcquireDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lockserver_acquire_duration_seconds",
			Help:    "time taken to decide a lock acquisition",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1us to 262ms
		},
		[]string{"kind"},
	)

	// acquire counter - grants vs conflicts
	// use this to calculate contention rate: conflict / (granted + conflict)
	// labels: kind, status (granted/conflict)
	AcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockserver_acquire_total",
			Help: "total number of lock acquisition attempts",
		},
		[]string{"kind", "status"},
	)

	// release counter - explicit releases, split by outcome
	// not_found releases are expected under racing expiry
	ReleaseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockserver_release_total",
			Help: "total number of lock releases",
		},
		[]string{"status"},
	)

	// renew counter - keep-alive activity
	// high rate = healthy clients, low rate = leases about to lapse
	RenewTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockserver_renew_total",
			Help: "total number of lease renewals",
		},
		[]string{"status"},
	)

	// expiry counter - sweeper evictions
	// spikes indicate crashed or partitioned clients
	ExpireTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lockserver_expire_total",
			Help: "total number of holders evicted by the sweeper",
		},
	)

	// currently live holders - gauge shows real-time grants
	// useful for detecting lock leaks
	HoldersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lockserver_holders_active",
			Help: "current number of live lock holders",
		},
	)

	// currently held lock names
	LocksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lockserver_locks_active",
			Help: "current number of held lock names",
		},
	)

	// auth failures - rejected requests before reaching the registry
	AuthFailureTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lockserver_auth_failure_total",
			Help: "total number of requests rejected by authentication",
		},
	)

	// service uptime - always 1 when running
	// prometheus uses this to detect service restarts
	Up = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lockserver_up",
			Help: "whether the service is up (always 1 when running)",
		},
	)
)

func init() {
	// set uptime gauge to 1 on startup
	Up.Set(1)
}

// NewAcquireTimer starts a latency observation for one acquire attempt.
func NewAcquireTimer(kind string) *prometheus.Timer {
	return prometheus.NewTimer(AcquireDuration.WithLabelValues(kind))
}
