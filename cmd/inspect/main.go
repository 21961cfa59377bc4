// Command inspect prints the search-space and scorer registries and scores
// candidate pipelines on synthetic data.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
