// Package identity manages music store accounts: users and roles kept in a
// store.Context, password hashing and policy, one-time tokens, outbound
// messages for email and SMS, and cookie based sign-in.
//
// The pieces are assembled once at startup:
//
//	users := identity.NewUserManager(db.Users(), opts,
//		identity.WithTokenProvider(identity.NewDataProtectorTokenProvider(secret, time.Day)),
//		identity.WithMessageProvider(identity.NewEmailMessageProvider(m)),
//		identity.WithMessageProvider(identity.NewSMSMessageProvider(sms)),
//	)
//	signIn := identity.NewSignInManager(users, protector, opts.Cookies)
//
// A signed-in request carries a Principal. Claims on the principal come from
// the user's stored claims and roles, and from external providers for
// accounts that signed in with OpenID Connect.
package identity
