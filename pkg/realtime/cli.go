package realtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/arrivals"
	"github.com/travigo/arrivalboard/pkg/boardcache"
	"github.com/travigo/arrivalboard/pkg/config"
	"github.com/travigo/arrivalboard/pkg/console"
	"github.com/travigo/arrivalboard/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func stationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to the YAML config file",
		},
		&cli.StringFlag{
			Name:  "station",
			Usage: "Station code to track",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Base URL of the station arrivals API",
		},
	}
}

// loadConfig applies flags on top of the file and environment configuration.
func loadConfig(c *cli.Context) (*config.Config, error) {
	boardConfig, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("station") {
		boardConfig.Station = c.String("station")
	}
	if c.IsSet("endpoint") {
		boardConfig.Endpoint = c.String("endpoint")
	}
	if c.IsSet("refresh-rate") {
		boardConfig.RefreshRate = config.Duration{Duration: c.Duration("refresh-rate")}
	}
	if c.IsSet("fetch-on-start") {
		boardConfig.FetchOnStart = c.Bool("fetch-on-start")
	}
	if c.IsSet("listen") {
		boardConfig.Listen = c.String("listen")
	}
	if c.IsSet("show-clock") {
		boardConfig.Console.ShowClock = c.Bool("show-clock")
	}
	if c.IsSet("quiet") {
		boardConfig.Console.Enabled = !c.Bool("quiet")
	}

	if err := boardConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return boardConfig, nil
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "Track the arrivals of a station and keep its board up to date",
			Flags: append(stationFlags(),
				&cli.DurationFlag{
					Name:  "refresh-rate",
					Usage: "Time between arrival refreshes",
				},
				&cli.BoolFlag{
					Name:  "fetch-on-start",
					Usage: "Refresh immediately instead of waiting for the first tick",
				},
				&cli.StringFlag{
					Name:  "listen",
					Usage: "Listen target for the board web view, disabled when empty",
				},
				&cli.BoolFlag{
					Name:  "show-clock",
					Usage: "Print the live clock on the console",
				},
				&cli.BoolFlag{
					Name:  "quiet",
					Usage: "Do not print arrivals on the console",
				},
			),
			Action: func(c *cli.Context) error {
				boardConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				if boardConfig.Redis.Enabled() {
					if err := redis_client.Connect(); err != nil {
						return err
					}
				}

				runner, err := NewRunner(boardConfig, arrivals.NewFetcher(boardConfig.Endpoint, boardConfig.RequestTimeout.Duration))
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				err = runner.Run(ctx)

				if redis_client.QueueConnection != nil {
					<-redis_client.QueueConnection.StopAllConsuming()
				}

				return err
			},
		},
		{
			Name:  "fetch",
			Usage: "Fetch the arrivals of a station once and print them",
			Flags: append(stationFlags(),
				&cli.BoolFlag{
					Name:  "pretty",
					Usage: "Print the full records instead of rows",
				},
			),
			Action: func(c *cli.Context) error {
				boardConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				fetcher := arrivals.NewFetcher(boardConfig.Endpoint, boardConfig.RequestTimeout.Duration)
				records, stats, err := fetcher.FetchAll(c.Context, boardConfig.Station)
				if err != nil {
					return err
				}

				log.Info().
					Str("station", boardConfig.Station).
					Int("records", stats.Published).
					Int("dropped", stats.Dropped).
					Msg("Fetched station arrivals")

				if c.Bool("pretty") {
					pretty.Println(records)
					return nil
				}

				for _, record := range records {
					fmt.Fprintln(os.Stdout, console.FormatRow(record))
				}

				return nil
			},
		},
		{
			Name:  "board",
			Usage: "Print the board cached in Redis by a running tracker",
			Flags: stationFlags(),
			Action: func(c *cli.Context) error {
				boardConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				if err := redis_client.Connect(); err != nil {
					return err
				}

				cache := boardcache.New(redis_client.Client, boardConfig.Station, boardConfig.StationName, boardConfig.Redis.CacheExpiration.Duration)
				snapshot, err := cache.GetBoard(c.Context, boardConfig.Station)
				if err != nil {
					return err
				}

				pretty.Println(snapshot)

				return nil
			},
		},
	}
}
