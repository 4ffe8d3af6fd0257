package events

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/config"
	"github.com/travigo/arrivalboard/pkg/consumer"
	"github.com/travigo/arrivalboard/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Arrival event queue tools",
		Subcommands: []*cli.Command{
			{
				Name:  "consume",
				Usage: "print arrival events published by a running board",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the YAML config file",
					},
					&cli.StringFlag{
						Name:  "queue",
						Usage: "Queue to consume, defaults to the configured queue",
					},
					&cli.IntFlag{
						Name:  "consumers",
						Value: 1,
						Usage: "Number of queue consumers",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 20,
						Usage: "Deliveries per batch",
					},
				},
				Action: func(c *cli.Context) error {
					boardConfig, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					queueName := boardConfig.Redis.Queue
					if c.String("queue") != "" {
						queueName = c.String("queue")
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						Connection:      redis_client.QueueConnection,
						QueueName:       queueName,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       c.Int("batch-size"),
						Timeout:         2 * time.Second,
						Consumer:        NewPrintBatchConsumer(),
					}
					if err := redisConsumer.Setup(); err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					go consumer.RunCleaner(ctx, redis_client.QueueConnection, 5*time.Minute)

					<-ctx.Done()
					go func() {
						signals := make(chan os.Signal, 1)
						signal.Notify(signals, syscall.SIGINT)
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					log.Info().Msg("Stopping consumers")
					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
