package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/appid"
)

func TestVersionHandlerReportsUnpackIdentity(t *testing.T) {
	identity, err := appid.Get(context.Background())
	require.NoError(t, err)
	SetVersionInfo("0.4.0", "9f1c2ab", "2026-10-01T08:00:00Z")
	SetAppIdentity(identity)
	t.Cleanup(func() {
		SetVersionInfo("dev", "unknown", "unknown")
		SetAppIdentity(nil)
	})

	rec := httptest.NewRecorder()
	VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp VersionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "unpack", resp.App.Name)
	assert.Equal(t, "unpackhq", resp.App.Vendor)
	assert.Equal(t, "0.4.0", resp.App.Version)
	assert.Equal(t, "9f1c2ab", resp.App.Commit)
	assert.Equal(t, "2026-10-01T08:00:00Z", resp.App.BuildDate)
	assert.NotEmpty(t, resp.Dependencies.Gofulmen)
	assert.NotEmpty(t, resp.Dependencies.Crucible)

	// The CLI `version --extended` prints the same report.
	assert.Equal(t, CurrentVersion().App, resp.App)
}

func TestVersionHandlerWithoutIdentityUsesExecutableName(t *testing.T) {
	SetVersionInfo("dev", "unknown", "unknown")
	SetAppIdentity(nil)

	resp := CurrentVersion()

	assert.NotEmpty(t, resp.App.Name)
	assert.Empty(t, resp.App.Vendor)
	assert.Equal(t, "dev", resp.App.Version)
}
