// Command musicstore serves the music store with OpenID Connect sign-in.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/dmitrymomot/musicstore"
	"github.com/dmitrymomot/musicstore/pkg/logger"
)

func main() {
	configFile := flag.String("config", musicstore.DefaultConfigFile, "path to the JSON configuration file")
	flag.Parse()

	s, err := musicstore.NewStartup(musicstore.WithConfigFile(*configFile))
	if err != nil {
		// The configured logger does not exist yet.
		logger.NewConsole().Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := s.Run(context.Background()); err != nil {
		s.Logger().Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
