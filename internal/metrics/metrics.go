package metrics

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spothinta_fetch_total",
			Help: "Total number of spot price fetches per request kind",
		},
		[]string{"kind"},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spothinta_fetch_errors_total",
			Help: "Total number of failed fetches per request kind and failure reason",
		},
		[]string{"kind", "reason"},
	)

	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spothinta_fetch_duration_seconds",
			Help:    "Fetch duration in seconds per request kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	DBPoolTotalConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spothinta_db_pool_total_conns",
			Help: "Total number of connections in the DB pool",
		},
	)

	DBPoolIdleConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spothinta_db_pool_idle_conns",
			Help: "Idle connections in the DB pool",
		},
	)

	DBPoolAcquiredConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spothinta_db_pool_acquired_conns",
			Help: "Currently acquired (in-use) connections in the DB pool",
		},
	)
)

// UpdateDBPoolMetrics снимает показания пула соединений
func UpdateDBPoolMetrics(stat *pgxpool.Stat) {
	DBPoolTotalConns.Set(float64(stat.TotalConns()))
	DBPoolIdleConns.Set(float64(stat.IdleConns()))
	DBPoolAcquiredConns.Set(float64(stat.AcquiredConns()))
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spothinta_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spothinta_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spothinta_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)
)

// UpdateJobMetrics фиксирует итог одного прогона фоновой задачи
func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
