package realtime

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/arrivalboard/pkg/api"
	"github.com/travigo/arrivalboard/pkg/arrivals"
	"github.com/travigo/arrivalboard/pkg/boardcache"
	"github.com/travigo/arrivalboard/pkg/config"
	"github.com/travigo/arrivalboard/pkg/console"
	"github.com/travigo/arrivalboard/pkg/events"
	"github.com/travigo/arrivalboard/pkg/redis_client"
)

// Runner owns one station board and everything that feeds or watches it.
type Runner struct {
	Config *config.Config

	Board     *arrivals.Board
	Publisher *arrivals.Publisher
	Tracker   *arrivals.StationArrivalTracker
	Clock     *arrivals.ClockTicker

	Console *console.Printer
}

func NewRunner(boardConfig *config.Config, fetcher arrivals.ArrivalFetcher) (*Runner, error) {
	board := arrivals.NewBoard(boardConfig.Station, boardConfig.StationName)
	publisher := arrivals.NewPublisher(arrivals.DefaultMailboxSize, board)

	runner := &Runner{
		Config:    boardConfig,
		Board:     board,
		Publisher: publisher,
		Tracker: &arrivals.StationArrivalTracker{
			Station:      boardConfig.Station,
			RefreshRate:  boardConfig.RefreshRate.Duration,
			FetchOnStart: boardConfig.FetchOnStart,
			Fetcher:      fetcher,
			Publisher:    publisher,
		},
		Clock: &arrivals.ClockTicker{
			Interval:  boardConfig.ClockRate.Duration,
			Observers: []arrivals.ClockObserver{board},
		},
	}

	if boardConfig.Console.Enabled {
		runner.Console = console.NewPrinter(boardConfig.Console.ShowClock)
		publisher.Register(runner.Console)
		runner.Clock.Observers = append(runner.Clock.Observers, runner.Console)
	}

	if boardConfig.Redis.Enabled() && redis_client.Client == nil {
		return nil, errors.New("redis observers are enabled but redis is not connected")
	}

	if boardConfig.Redis.BoardCache {
		publisher.Register(boardcache.New(
			redis_client.Client,
			boardConfig.Station,
			boardConfig.StationName,
			boardConfig.Redis.CacheExpiration.Duration,
		))
	}

	if boardConfig.Redis.Events {
		eventsQueue, err := redis_client.QueueConnection.OpenQueue(boardConfig.Redis.Queue)
		if err != nil {
			return nil, err
		}
		publisher.Register(events.NewQueuePublisher(eventsQueue))
	}

	return runner, nil
}

// Run blocks until ctx is cancelled or the web server fails.
func (r *Runner) Run(ctx context.Context) error {
	workers := pool.New().WithContext(ctx).WithCancelOnError()

	workers.Go(func(ctx context.Context) error {
		r.Publisher.Run(ctx)
		return nil
	})
	workers.Go(func(ctx context.Context) error {
		r.Tracker.Run(ctx)
		return nil
	})
	workers.Go(func(ctx context.Context) error {
		r.Clock.Run(ctx)
		return nil
	})

	if r.Config.Listen != "" {
		workers.Go(func(ctx context.Context) error {
			return api.SetupServer(ctx, r.Config.Listen, r.Board)
		})
	}

	log.Info().
		Str("station", r.Config.Station).
		Str("endpoint", r.Config.Endpoint).
		Msg("Arrival board running")

	return workers.Wait()
}
