// Package appid holds the application identity used for env prefixes,
// config directories and telemetry namespaces.
package appid

import (
	"context"

	"github.com/fulmenhq/gofulmen/appidentity"
)

const (
	Vendor      = "unpackhq"
	BinaryName  = "unpack"
	EnvPrefix   = "UNPACK_"
	ConfigName  = "unpack"
	Description = "Plain-language text simplification service"
)

// Get returns a fresh copy of the identity so callers may not mutate a
// shared value.
func Get(_ context.Context) (*appidentity.Identity, error) {
	return &appidentity.Identity{
		Vendor:      Vendor,
		BinaryName:  BinaryName,
		EnvPrefix:   EnvPrefix,
		ConfigName:  ConfigName,
		Description: Description,
	}, nil
}
