package redis_client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0
const queueConnectionTag = "arrivalboard"

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["ARRIVALBOARD_REDIS_ADDRESS"] != "" {
		address = env["ARRIVALBOARD_REDIS_ADDRESS"]
	}

	if env["ARRIVALBOARD_REDIS_PASSWORD"] != "" {
		password = env["ARRIVALBOARD_REDIS_PASSWORD"]
	}

	if env["ARRIVALBOARD_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["ARRIVALBOARD_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return fmt.Errorf("ARRIVALBOARD_REDIS_DATABASE: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := Setup(client); err != nil {
		client.Close()
		return err
	}

	log.Info().Str("address", address).Int("database", database).Msg("Redis client setup")

	return nil
}

// Setup pings client, retrying with an exponential backoff, and opens the queue
// connection on top of it.
func Setup(client *redis.Client) error {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 250 * time.Millisecond
	retryBackoff.MaxElapsedTime = 15 * time.Second

	err := backoff.RetryNotify(func() error {
		return client.Ping(context.Background()).Err()
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("wait", wait).Msg("Redis not reachable yet, retrying")
	})
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, nil)
	if err != nil {
		return fmt.Errorf("opening queue connection: %w", err)
	}

	Client = client
	QueueConnection = queueConnection

	return nil
}

// Ping reports whether Redis is reachable. It is a no-op success when Redis is not set up.
func Ping(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Ping(ctx).Err()
}
