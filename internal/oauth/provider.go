// Package oauth holds optional external identity providers used for
// authorization-code sign-in.
package oauth

import (
	"context"

	"sso-backend/internal/domain"
)

// ExternalIdentityProvider drives an authorization-code flow against a third party.
type ExternalIdentityProvider interface {
	// Name is the provider recorded on accounts it creates.
	Name() domain.Provider
	// AuthorizationURL is where the browser is redirected to start sign-in.
	AuthorizationURL(state string) string
	// ExchangeCode trades the callback code for the user's identity.
	ExchangeCode(ctx context.Context, code string) (*domain.ExternalUser, error)
}
