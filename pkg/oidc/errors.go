package oidc

import "errors"

var (
	ErrMissingAuthority = errors.New("oidc: authority is required")
	ErrMissingClientID  = errors.New("oidc: client id is required")
	ErrMissingSigner    = errors.New("oidc: signer is required")
	ErrDiscovery        = errors.New("oidc: failed to load provider metadata")
	ErrProtocol         = errors.New("oidc: provider returned an error")
	ErrMissingState     = errors.New("oidc: state is missing")
	ErrInvalidState     = errors.New("oidc: state is invalid")
	ErrMissingIDToken   = errors.New("oidc: id_token is missing")
	ErrInvalidIDToken   = errors.New("oidc: id_token is invalid")
	ErrInvalidIssuer    = errors.New("oidc: id_token issuer is invalid")
	ErrInvalidAudience  = errors.New("oidc: id_token audience is invalid")
	ErrTokenExpired     = errors.New("oidc: id_token has expired")
	ErrNonceMissing     = errors.New("oidc: id_token has no nonce")
	ErrNonceNotFound    = errors.New("oidc: nonce cookie not found")
	ErrNonceExpired     = errors.New("oidc: nonce has expired")
	ErrInvalidCHash     = errors.New("oidc: c_hash does not match the authorization code")
	ErrRedeemCode       = errors.New("oidc: failed to redeem authorization code")
)
