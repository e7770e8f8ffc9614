package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()
	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })
	return collector
}

func TestSimplifyMetrics(t *testing.T) {
	collector := setupTelemetry(t)

	RecordSimplification("gemini", OutcomeSuccess, 120*time.Millisecond)
	RecordRateLimitRejection()
	SetRateLimitClients(4)
	RecordCacheLookup(true)
	RecordCacheLookup(false)

	assert.Greater(t, collector.CountMetricsByName(SimplifyRequestsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(SimplifyDuration), 0)
	assert.Greater(t, collector.CountMetricsByName(RateLimitRejections), 0)
	assert.Greater(t, collector.CountMetricsByName(RateLimitTrackedClient), 0)
	assert.GreaterOrEqual(t, collector.CountMetricsByName(CacheLookupsTotal), 2)
}

func TestErrorMetrics(t *testing.T) {
	collector := setupTelemetry(t)

	RecordError("RATE_LIMITED", 429)
	RecordPanic()
	RecordErrorByEndpoint("/simplify", "RATE_LIMITED")

	assert.Greater(t, collector.CountMetricsByName(ErrorsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(PanicsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(ErrorsByEndpointName), 0)
}

func TestMetricsNoopWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	RecordSimplification("anthropic", OutcomeFailure, time.Second)
	RecordCacheLookup(true)
	RecordHealthCheck("store", false, time.Millisecond)
	SetServerStartTime(time.Now().Unix())
}
