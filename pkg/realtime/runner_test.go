package realtime

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/arrivalboard/pkg/arrivals"
	"github.com/travigo/arrivalboard/pkg/boardcache"
	"github.com/travigo/arrivalboard/pkg/config"
	"github.com/travigo/arrivalboard/pkg/redis_client"
)

const stationBody = `{"data":{"bosso":[
	{"id":"bus-1","status":"moving","eta":65},
	{"id":"bus-2","status":"stopped","eta":0}
]}}`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stationBody))
	}))
	t.Cleanup(server.Close)

	return server
}

func testConfig(endpoint string) *config.Config {
	boardConfig := config.Default()
	boardConfig.Endpoint = endpoint
	boardConfig.RefreshRate = config.Duration{Duration: time.Hour}
	boardConfig.ClockRate = config.Duration{Duration: 10 * time.Millisecond}
	boardConfig.FetchOnStart = true

	return boardConfig
}

func runUntil(t *testing.T, runner *Runner, condition func() bool) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	assert.Eventually(t, condition, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerFillsBoardAndConsole(t *testing.T) {
	upstream := newUpstream(t)
	boardConfig := testConfig(upstream.URL)

	runner, err := NewRunner(boardConfig, arrivals.NewFetcher(boardConfig.Endpoint, time.Second))
	require.NoError(t, err)

	output := &bytes.Buffer{}
	runner.Console.Output = output

	runUntil(t, runner, func() bool {
		snapshot := runner.Board.Snapshot()
		return !snapshot.Refreshing && len(snapshot.Arrivals) == 2 && snapshot.Clock != ""
	})

	records := runner.Board.Records()
	assert.Equal(t, "bus-1", records[0].VehicleID)
	assert.Equal(t, "bus-2", records[1].VehicleID)
	assert.Contains(t, output.String(), "bus-1\tmoving\t")
	assert.Equal(t, uint64(1), runner.Tracker.Cycles())
}

func TestRunnerWithoutConsole(t *testing.T) {
	boardConfig := testConfig("http://localhost/station")
	boardConfig.Console.Enabled = false

	runner, err := NewRunner(boardConfig, arrivals.NewFetcher(boardConfig.Endpoint, time.Second))
	require.NoError(t, err)

	assert.Nil(t, runner.Console)
	assert.Len(t, runner.Clock.Observers, 1)
}

func TestRunnerRequiresRedisForRedisObservers(t *testing.T) {
	redis_client.Client = nil

	boardConfig := testConfig("http://localhost/station")
	boardConfig.Redis.BoardCache = true

	_, err := NewRunner(boardConfig, arrivals.NewFetcher(boardConfig.Endpoint, time.Second))
	assert.Error(t, err)
}

func TestRunnerMirrorsBoardIntoRedis(t *testing.T) {
	server := miniredis.RunT(t)
	require.NoError(t, redis_client.Setup(redis.NewClient(&redis.Options{Addr: server.Addr()})))
	t.Cleanup(func() {
		<-redis_client.QueueConnection.StopAllConsuming()
		redis_client.Client = nil
		redis_client.QueueConnection = nil
	})

	upstream := newUpstream(t)
	boardConfig := testConfig(upstream.URL)
	boardConfig.Console.Enabled = false
	boardConfig.Redis.BoardCache = true
	boardConfig.Redis.Events = true

	runner, err := NewRunner(boardConfig, arrivals.NewFetcher(boardConfig.Endpoint, time.Second))
	require.NoError(t, err)

	cache := boardcache.New(redis_client.Client, boardConfig.Station, boardConfig.StationName, time.Minute)

	runUntil(t, runner, func() bool {
		snapshot, err := cache.GetBoard(context.Background(), boardConfig.Station)
		return err == nil && !snapshot.Refreshing && len(snapshot.Arrivals) == 2
	})
}
