// Package oidc signs users in with an OpenID Connect identity provider
// using the hybrid "code id_token" flow with form_post responses.
//
// A Handler is built from Options and a Signer that persists the resulting
// principal, usually an identity.SignInManager writing the external cookie:
//
//	h, err := oidc.New(oidc.Options{
//		Authority: "https://login.windows.net/contoso.onmicrosoft.com",
//		ClientID:  "c99497aa-3ee2-4707-b8a8-c33f51323fef",
//	}, signIn)
//
// Challenge redirects the browser to the provider. The provider posts back to
// CallbackPath, where the Handler middleware validates the state, the
// id_token signature and claims, and the nonce before signing the user in and
// redirecting to the URI stored in the state.
//
// Notifications observe or alter each stage. Any notification may call
// HandleResponse to stop processing after writing its own response, or
// SkipToNextMiddleware to pass the request on unchanged.
//
// Discovery metadata and signing keys are fetched over the Backchannel
// transport, so tests can substitute an in-process provider such as the one
// in the mockidp package.
package oidc
