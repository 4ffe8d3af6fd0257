package boardcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/arrivalboard/pkg/arrivals"
)

func newTestCache(t *testing.T) (*BoardCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, "bosso", "Bosso", 10*time.Minute), server
}

func TestMirrorsCurrentCycle(t *testing.T) {
	boardCache, server := newTestCache(t)
	ctx := context.Background()

	cycle := arrivals.Cycle{ID: 1, Station: "bosso", StartedAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}
	boardCache.OnCycleStart(ctx, cycle)
	boardCache.OnRecord(ctx, cycle, arrivals.ArrivalRecord{VehicleID: "bus-1", Status: "moving", ETAClock: "01:05", ArrivalClock: "12:01:05", ETASeconds: 65})

	snapshot, err := boardCache.GetBoard(ctx, "bosso")
	require.NoError(t, err)
	assert.True(t, snapshot.Refreshing)
	require.Len(t, snapshot.Arrivals, 1)
	assert.Equal(t, "bus-1", snapshot.Arrivals[0].VehicleID)

	boardCache.OnCycleEnd(ctx, cycle, arrivals.CycleResult{Duration: time.Second})

	snapshot, err = boardCache.GetBoard(ctx, "bosso")
	require.NoError(t, err)
	assert.False(t, snapshot.Refreshing)
	assert.Equal(t, "Bosso", snapshot.StationName)
	assert.Equal(t, uint64(1), snapshot.Cycle)

	assert.True(t, server.Exists(Key("bosso")))
	assert.Greater(t, server.TTL(Key("bosso")), time.Duration(0))
}

func TestNewCycleClearsCachedBoard(t *testing.T) {
	boardCache, _ := newTestCache(t)
	ctx := context.Background()

	first := arrivals.Cycle{ID: 1, Station: "bosso"}
	boardCache.OnCycleStart(ctx, first)
	boardCache.OnRecord(ctx, first, arrivals.ArrivalRecord{VehicleID: "bus-1", Status: "moving", ETAClock: "01:05", ArrivalClock: "12:01:05"})
	boardCache.OnCycleEnd(ctx, first, arrivals.CycleResult{})

	boardCache.OnCycleStart(ctx, arrivals.Cycle{ID: 2, Station: "bosso"})

	snapshot, err := boardCache.GetBoard(ctx, "bosso")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Arrivals)
	assert.Equal(t, uint64(2), snapshot.Cycle)
}

func TestGetBoardMissing(t *testing.T) {
	boardCache, _ := newTestCache(t)

	_, err := boardCache.GetBoard(context.Background(), "maitumbi")
	assert.Error(t, err)
}
