// Package metrics holds Prometheus instruments used across the site.
// All collectors are registered with the global registry, so importing
// this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live sessions held in memory.",
		})

	LoginsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Cumulative number of successful logins.",
		})

	LoginFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Cumulative number of rejected credential checks.",
		})

	SessionsRevokedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_revoked_total",
			Help: "Cumulative number of revoked sessions, by reason.",
		},
		[]string{"reason"},
	)

	GeoLookupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_lookups_total",
			Help: "Cumulative number of geolocation resolutions attempted.",
		})

	GeoLookupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_lookup_errors_total",
			Help: "Cumulative number of failed geolocation resolutions.",
		})

	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upload_bytes_total",
			Help: "Cumulative bytes accepted by the upload sink.",
		})
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		LoginsTotal,
		LoginFailuresTotal,
		SessionsRevokedTotal,
		GeoLookupsTotal,
		GeoLookupErrorsTotal,
		UploadBytesTotal,
	)
}
