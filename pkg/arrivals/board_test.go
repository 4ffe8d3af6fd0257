package arrivals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardIgnoresRecordsFromReplacedCycle(t *testing.T) {
	ctx := context.Background()
	board := NewBoard("bosso", "Bosso")

	first := Cycle{ID: 1, Station: "bosso"}
	second := Cycle{ID: 2, Station: "bosso"}

	board.OnCycleStart(ctx, first)
	board.OnRecord(ctx, first, ArrivalRecord{VehicleID: "RTC"})
	board.OnCycleStart(ctx, second)
	board.OnRecord(ctx, first, ArrivalRecord{VehicleID: "FTD"})
	board.OnRecord(ctx, second, ArrivalRecord{VehicleID: "KLM"})

	records := board.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "KLM", records[0].VehicleID)
}

func TestBoardSnapshot(t *testing.T) {
	ctx := context.Background()
	board := NewBoard("bosso", "Bosso")

	snapshot := board.Snapshot()
	assert.NotNil(t, snapshot.Arrivals)
	assert.Empty(t, snapshot.UpdatedAt)

	startedAt := time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)
	cycle := Cycle{ID: 7, Station: "bosso", StartedAt: startedAt}

	board.OnCycleStart(ctx, cycle)
	assert.True(t, board.Snapshot().Refreshing)

	board.OnRecord(ctx, cycle, ArrivalRecord{VehicleID: "RTC", Status: "Delayed", ETAClock: "00:05", ArrivalClock: "12:00:05"})
	board.OnCycleEnd(ctx, cycle, CycleResult{Stats: FetchStats{Entries: 2, Published: 1, Dropped: 1}, Duration: 2 * time.Second})
	board.OnClockTick(startedAt)

	snapshot = board.Snapshot()
	assert.Equal(t, "bosso", snapshot.Station)
	assert.Equal(t, "Bosso", snapshot.StationName)
	assert.Equal(t, uint64(7), snapshot.Cycle)
	assert.False(t, snapshot.Refreshing)
	assert.Equal(t, 1, snapshot.Dropped)
	assert.Equal(t, "2024-03-03T12:00:02Z", snapshot.UpdatedAt)
	assert.Equal(t, "Sun, 03 Mar 2024 12:00:00 UTC", snapshot.Clock)
	require.Len(t, snapshot.Arrivals, 1)

	// Snapshots are copies
	snapshot.Arrivals[0].VehicleID = "changed"
	assert.Equal(t, "RTC", board.Records()[0].VehicleID)
}

func TestPublisherRecoversFromObserverPanic(t *testing.T) {
	board := NewBoard("bosso", "Bosso")
	recorder := newRecordingObserver(nil)

	panicking := ObserverFuncs{
		Record: func(ArrivalRecord) { panic("display unavailable") },
	}

	publisher, ctx := startPublisher(t, panicking, board, recorder)

	tracker := &StationArrivalTracker{
		Station:   "bosso",
		Publisher: publisher,
		Fetcher:   staticFetcher("RTC", "FTD"),
	}

	tracker.RunCycle(ctx)
	recorder.waitForCycleEnd(t)

	assert.Len(t, board.Records(), 2)
	assert.Equal(t, []string{"start:1", "record:1:RTC", "record:1:FTD", "end:1"}, recorder.Events())
}

func TestClockTickerIsIndependentOfCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := NewBoard("bosso", "Bosso")
	ticks := make(chan time.Time, 16)

	clock := &ClockTicker{
		Interval: 10 * time.Millisecond,
		Observers: []ClockObserver{
			board,
			ClockFunc(func(now time.Time) {
				select {
				case ticks <- now:
				default:
				}
			}),
		},
		Now: func() time.Time {
			return time.Date(2024, time.March, 3, 8, 5, 9, 0, time.UTC)
		},
	}

	go clock.Run(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for clock tick")
		}
	}

	assert.Equal(t, "Sun, 03 Mar 2024 08:05:09 UTC", board.Snapshot().Clock)
	assert.Empty(t, board.Records())
}
