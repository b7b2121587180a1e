// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts partitioned by principal kind and outcome.",
		},
		[]string{"kind", "outcome"}, // kind: central|site, outcome: ok|invalid|locked|rate_limited
	)

	LockoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_admin_lockouts_total",
			Help: "Cumulative number of site-admin credentials entering the locked state.",
		})

	AuthzDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denied_total",
			Help: "Requests rejected by the authorization gate, by reason.",
		},
		[]string{"reason"}, // unauthenticated|forbidden|not_found
	)

	ActiveTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_tenants",
			Help: "Number of tenant registry rows currently cached in memory.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenant rows loaded into the cache.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant cache load errors.",
		})

	TenantEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_evict_total",
			Help: "Cumulative number of tenants evicted from the cache.",
		})

	AuditWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_errors_total",
			Help: "Audit records that could not be persisted (logged and dropped).",
		})
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		LockoutsTotal,
		AuthzDeniedTotal,
		ActiveTenants,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantEvictTotal,
		AuditWriteErrorsTotal,
	)
}
