package metrics

import (
	"time"

	"github.com/unpackhq/unpack/internal/observability"
)

// Metric names emitted by the simplification pipeline.
const (
	SimplifyRequestsTotal  = "simplify_requests_total"
	SimplifyDuration       = "simplify_duration_ms"
	RateLimitRejections    = "ratelimit_rejections_total"
	RateLimitTrackedClient = "ratelimit_tracked_clients"
	CacheLookupsTotal      = "simplify_cache_lookups_total"
	HealthCheckTotal       = "app_health_check_total"
	HealthCheckDuration    = "app_health_check_duration_ms"
	ServerStartTime        = "app_server_start_time_seconds"
)

// Simplification outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeBusy    = "busy"
	OutcomeTimeout = "timeout"
	OutcomeFailure = "failure"
)

// RecordSimplification records one dispatched simplification.
func RecordSimplification(provider, outcome string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		SimplifyRequestsTotal,
		1,
		map[string]string{
			"provider": provider,
			"outcome":  outcome,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		SimplifyDuration,
		duration,
		map[string]string{"provider": provider},
	)
}

// RecordRateLimitRejection counts a request refused by the local limiter.
func RecordRateLimitRejection() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(RateLimitRejections, 1, nil)
	}
}

// SetRateLimitClients reports how many client keys the limiter holds.
func SetRateLimitClients(n int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(RateLimitTrackedClient, float64(n), nil)
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	_ = observability.TelemetrySystem.Counter(
		CacheLookupsTotal,
		1,
		map[string]string{"result": result},
	)
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	_ = observability.TelemetrySystem.Counter(
		HealthCheckTotal,
		1,
		map[string]string{
			"check":  checkName,
			"status": status,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		HealthCheckDuration,
		duration,
		map[string]string{"check": checkName},
	)
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}
