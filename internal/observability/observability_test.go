package observability

import (
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetLoggers(t *testing.T) {
	t.Helper()
	cli, srv := CLILogger, ServerLogger
	t.Cleanup(func() {
		CLILogger, ServerLogger = cli, srv
	})
	CLILogger, ServerLogger = nil, nil
}

func TestLoggerPrefersServerLogger(t *testing.T) {
	resetLoggers(t)
	assert.Nil(t, Logger())

	InitCLILogger("unpack-test", true)
	require.NotNil(t, CLILogger)
	assert.Same(t, CLILogger, Logger())
	CLILogger.Debug("verbose cli logger", zap.String("mode", "debug"))

	InitServerLogger("unpack-test", "warn", "unpackhq_unpack")
	require.NotNil(t, ServerLogger)
	assert.Same(t, ServerLogger, Logger())
	ServerLogger.Warn("structured logger", zap.String("component", "test"))
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"DEBUG":   "DEBUG",
		" warn ":  "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"info":    "INFO",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "input %q", in)
	}
}

func TestSetServerLogLevel(t *testing.T) {
	resetLoggers(t)
	assert.Equal(t, logging.ERROR, SetServerLogLevel("error"), "no logger yet")

	InitServerLogger("unpack-test", "info", "")
	assert.Equal(t, logging.DEBUG, SetServerLogLevel("DEBUG"))
	assert.Equal(t, logging.DEBUG, ServerLogger.GetLevel())
	assert.Equal(t, logging.INFO, SetServerLogLevel("verbose"))
	assert.Equal(t, logging.INFO, ServerLogger.GetLevel())
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9191")
	require.NoError(t, err)
	assert.Equal(t, 9191, port)

	port, err = resolvePort("127.0.0.1:0")
	require.NoError(t, err)
	assert.Equal(t, 0, port)

	_, err = resolvePort("no-port")
	require.Error(t, err)
}

func TestInitMetricsPicksFreePort(t *testing.T) {
	if err := InitMetrics("unpack_test", 0); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "permission") {
			t.Skipf("loopback bind not permitted: %v", err)
		}
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = ShutdownMetrics() })

	require.NotNil(t, TelemetrySystem)
	require.NotNil(t, PrometheusExporter)
	assert.Greater(t, GetMetricsPort(), 0)

	require.NoError(t, ShutdownMetrics())
	assert.Nil(t, TelemetrySystem)
	assert.Nil(t, PrometheusExporter)
	assert.NoError(t, ShutdownMetrics())
}

func TestEmbeddedCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}
