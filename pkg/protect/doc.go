// Package protect encrypts and authenticates small payloads such as
// authentication tickets, OpenID Connect state and nonce values.
//
// A Protector is created from a root secret and narrowed with a purpose.
// Two protectors with different purposes can not read each other's output:
//
//	root, err := protect.New(secret)
//	tickets := root.Purpose("identity", "application")
//	token, err := tickets.Protect([]byte(`{"sub":"42"}`))
//
// DataFormat values wrap a protector with a serializer. JSONFormat is the
// default one:
//
//	state := protect.NewJSONFormat[oidc.Properties](root.Purpose("oidc", "state"))
//	s, err := state.Protect(props)
package protect
