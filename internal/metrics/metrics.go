// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonecheck_lookups_total",
		Help: "Total zoning lookups by result (zoned, unzoned, error)",
	}, []string{"result"})
	LookupDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zonecheck_lookup_duration_ms",
		Help:    "Lookup duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 200},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonecheck_cache_hits_total",
		Help: "Total lookup cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonecheck_cache_misses_total",
		Help: "Total lookup cache misses",
	})
	SnapshotReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonecheck_snapshot_reloads_total",
		Help: "Jurisdiction snapshot loads by status",
	}, []string{"status"})
	MalformedGeometriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonecheck_malformed_geometries_total",
		Help: "Records loaded with unusable geometry, by kind (parcel, overlay)",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(SnapshotReloadsTotal)
	prometheus.MustRegister(MalformedGeometriesTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
