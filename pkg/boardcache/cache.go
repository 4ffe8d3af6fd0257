package boardcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/arrivals"
)

const keyFormat = "arrivalboard:board:%s"

// BoardCache mirrors the board into Redis after every event so that other processes can
// read the current cycle without talking to this one.
type BoardCache struct {
	Cache *cache.Cache[string]

	board *arrivals.Board
}

func New(client *redis.Client, station string, stationName string, expiration time.Duration) *BoardCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &BoardCache{
		Cache: cache.New[string](redisStore),
		board: arrivals.NewBoard(station, stationName),
	}
}

func Key(station string) string {
	return fmt.Sprintf(keyFormat, station)
}

func (c *BoardCache) OnCycleStart(ctx context.Context, cycle arrivals.Cycle) {
	c.board.OnCycleStart(ctx, cycle)
	c.store(ctx)
}

func (c *BoardCache) OnRecord(ctx context.Context, cycle arrivals.Cycle, record arrivals.ArrivalRecord) {
	c.board.OnRecord(ctx, cycle, record)
	c.store(ctx)
}

func (c *BoardCache) OnCycleEnd(ctx context.Context, cycle arrivals.Cycle, result arrivals.CycleResult) {
	c.board.OnCycleEnd(ctx, cycle, result)
	c.store(ctx)
}

func (c *BoardCache) store(ctx context.Context) {
	snapshot := c.board.Snapshot()

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Str("station", snapshot.Station).Msg("Failed to encode board for cache")
		return
	}

	if err := c.Cache.Set(ctx, Key(snapshot.Station), string(snapshotJSON)); err != nil {
		log.Error().Err(err).Str("station", snapshot.Station).Msg("Failed to write board to cache")
	}
}

func (c *BoardCache) GetBoard(ctx context.Context, station string) (arrivals.BoardSnapshot, error) {
	var snapshot arrivals.BoardSnapshot

	cached, err := c.Cache.Get(ctx, Key(station))
	if err != nil {
		return snapshot, fmt.Errorf("reading cached board for %s: %w", station, err)
	}

	if err := json.Unmarshal([]byte(cached), &snapshot); err != nil {
		return snapshot, fmt.Errorf("decoding cached board for %s: %w", station, err)
	}

	return snapshot, nil
}
