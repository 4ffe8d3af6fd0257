package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/api/routes"
	"github.com/travigo/arrivalboard/pkg/events"
	"github.com/travigo/arrivalboard/pkg/realtime"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// Arrival rows go to stdout so logs stay on stderr
	if os.Getenv("ARRIVALBOARD_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("ARRIVALBOARD_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	commands := realtime.RegisterCLI()
	commands = append(commands,
		events.RegisterCLI(),
		&cli.Command{
			Name:  "version",
			Usage: "Print the version",
			Action: func(c *cli.Context) error {
				fmt.Println(routes.Version)
				return nil
			},
		},
	)

	app := &cli.App{
		Name:        "arrivalboard",
		Description: "Live arrivals board for a single station",
		Commands:    commands,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
