package arrivals

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

const DefaultRefreshRate = 30 * time.Second

// StationArrivalTracker refreshes the board of one station every RefreshRate. Each cycle
// runs on its own worker; a tick that arrives while a cycle is still in flight is skipped.
type StationArrivalTracker struct {
	Station      string
	RefreshRate  time.Duration
	FetchOnStart bool

	Fetcher   ArrivalFetcher
	Publisher *Publisher

	Now func() time.Time

	cycles   atomic.Uint64
	skipped  atomic.Uint64
	inFlight atomic.Bool
	workers  conc.WaitGroup
}

func (t *StationArrivalTracker) Run(ctx context.Context) {
	refreshRate := t.RefreshRate
	if refreshRate <= 0 {
		refreshRate = DefaultRefreshRate
	}

	log.Info().
		Str("station", t.Station).
		Dur("refresharrivals", refreshRate).
		Bool("fetchonstart", t.FetchOnStart).
		Msg("Registering new station arrival tracker")

	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	if t.FetchOnStart {
		t.Trigger(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			t.workers.Wait()
			log.Info().
				Str("station", t.Station).
				Uint64("cycles", t.cycles.Load()).
				Uint64("skipped", t.skipped.Load()).
				Msg("Stopped station arrival tracker")
			return
		case <-ticker.C:
			t.Trigger(ctx)
		}
	}
}

// Trigger starts a cycle on a new worker. It returns false when the previous cycle is
// still running and this one was skipped.
func (t *StationArrivalTracker) Trigger(ctx context.Context) bool {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		log.Warn().
			Str("station", t.Station).
			Uint64("cycle", t.cycles.Load()).
			Msg("Previous arrival cycle still running, skipping tick")
		return false
	}

	t.workers.Go(func() {
		defer t.inFlight.Store(false)

		var catcher panics.Catcher
		catcher.Try(func() {
			t.RunCycle(ctx)
		})

		if recovered := catcher.Recovered(); recovered != nil {
			log.Error().Err(recovered.AsError()).Str("station", t.Station).Msg("Arrival cycle panicked")
		}
	})

	return true
}

// RunCycle performs one clear-fetch-publish pass synchronously.
func (t *StationArrivalTracker) RunCycle(ctx context.Context) CycleResult {
	startTime := t.now()
	cycle := Cycle{
		ID:        t.cycles.Add(1),
		Station:   t.Station,
		StartedAt: startTime,
	}

	if err := t.Publisher.CycleStarted(ctx, cycle); err != nil {
		return CycleResult{Err: err}
	}

	stats, err := t.Fetcher.Fetch(ctx, t.Station, func(record ArrivalRecord) {
		t.Publisher.Publish(ctx, cycle, record)
	})

	result := CycleResult{
		Stats:    stats,
		Duration: t.now().Sub(startTime),
		Err:      err,
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("station", t.Station).
			Uint64("cycle", cycle.ID).
			Str("class", ErrorClass(err)).
			Msg("Failed to refresh station arrivals")
	} else {
		log.Info().
			Str("station", t.Station).
			Uint64("cycle", cycle.ID).
			Int("records", stats.Published).
			Int("dropped", stats.Dropped).
			Str("duration", result.Duration.String()).
			Msg("update station arrivals")
	}

	t.Publisher.CycleEnded(ctx, cycle, result)

	return result
}

func (t *StationArrivalTracker) Cycles() uint64 {
	return t.cycles.Load()
}

func (t *StationArrivalTracker) Skipped() uint64 {
	return t.skipped.Load()
}

func (t *StationArrivalTracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// RunStation polls station every interval until ctx is cancelled, calling onCycleStart at
// the start of each cycle and onRecord for every record in upstream order.
func RunStation(ctx context.Context, station string, interval time.Duration, fetcher ArrivalFetcher, onRecord func(ArrivalRecord), onCycleStart func()) {
	publisher := NewPublisher(DefaultMailboxSize, ObserverFuncs{
		CycleStart: onCycleStart,
		Record:     onRecord,
	})

	tracker := &StationArrivalTracker{
		Station:     station,
		RefreshRate: interval,
		Fetcher:     fetcher,
		Publisher:   publisher,
	}

	var wg conc.WaitGroup
	wg.Go(func() { publisher.Run(ctx) })
	wg.Go(func() { tracker.Run(ctx) })
	wg.Wait()
}
