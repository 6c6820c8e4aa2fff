package core

import "context"

type WalletIdentity struct {
	AccountRef    string `json:"account_ref" valid:"required"`
	SigningKeyRef string `json:"signing_key_ref" valid:"required"`
}

type IdentitySession interface {
	// Current returns the active identity or ErrNotAuthenticated.
	Current(ctx context.Context) (*WalletIdentity, error)
}
