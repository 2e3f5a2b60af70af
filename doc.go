// Package musicstore hosts the music store web application in its OpenID
// Connect test configuration.
//
// A Startup reads config.json and the environment, registers the services
// in a dig container and assembles the request pipeline:
//
//	s, err := musicstore.NewStartup()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Configure seeds the sample catalog and the administrator before it
// returns, so the first request already sees a populated store.
package musicstore
