package appid

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPopulatesIdentity(t *testing.T) {
	identity, err := Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "unpack", identity.BinaryName)
	assert.Equal(t, "unpack", identity.ConfigName)
	assert.NotEmpty(t, identity.Vendor)
	assert.True(t, strings.HasSuffix(identity.EnvPrefix, "_"))
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	a, err := Get(context.Background())
	require.NoError(t, err)
	a.BinaryName = "changed"

	b, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BinaryName, b.BinaryName)
}
