package handlers

import (
	"context"
	"fmt"

	"github.com/unpackhq/unpack/internal/ailink"
)

// CredentialSource reports whether a provider has an API key configured.
type CredentialSource interface {
	HasCredentials(id ailink.ProviderID) bool
}

// ProviderCredentialsChecker fails when the default provider has no key.
// Other providers without keys do not affect health.
type ProviderCredentialsChecker struct {
	Source   CredentialSource
	Provider ailink.ProviderID
}

func (c ProviderCredentialsChecker) CheckHealth(ctx context.Context) error {
	if c.Source == nil {
		return fmt.Errorf("provider registry not configured")
	}
	if !c.Source.HasCredentials(c.Provider) {
		return fmt.Errorf("no API key configured for %s", c.Provider)
	}
	return nil
}

// Pinger is satisfied by the simplification store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker verifies the cache database is reachable.
type StoreChecker struct {
	Store Pinger
}

func (c StoreChecker) CheckHealth(ctx context.Context) error {
	if c.Store == nil {
		return fmt.Errorf("store not open")
	}
	return c.Store.Ping(ctx)
}
