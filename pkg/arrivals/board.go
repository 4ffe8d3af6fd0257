package arrivals

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Board holds the records of the current cycle. It is cleared at the start of every
// cycle and filled as records are published; nothing carries over between cycles.
type Board struct {
	Station     string
	StationName string

	mutex      sync.RWMutex
	cycle      Cycle
	records    []ArrivalRecord
	refreshing bool
	updatedAt  time.Time
	lastResult CycleResult
	clock      string
}

type BoardSnapshot struct {
	Station     string `json:"station" groups:"basic,detailed"`
	StationName string `json:"stationName" groups:"basic,detailed"`
	Clock       string `json:"clock" groups:"basic,detailed"`

	Cycle      uint64 `json:"cycle" groups:"detailed"`
	UpdatedAt  string `json:"updatedAt,omitempty" groups:"detailed"`
	Refreshing bool   `json:"refreshing" groups:"detailed"`
	Dropped    int    `json:"dropped" groups:"detailed"`

	LastError      string `json:"lastError,omitempty" groups:"basic,detailed"`
	LastErrorClass string `json:"lastErrorClass,omitempty" groups:"detailed"`

	Arrivals []ArrivalRecord `json:"arrivals" groups:"basic,detailed"`
}

func NewBoard(station string, stationName string) *Board {
	return &Board{
		Station:     station,
		StationName: stationName,
	}
}

func (b *Board) OnCycleStart(_ context.Context, cycle Cycle) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.cycle = cycle
	b.records = nil
	b.refreshing = true
}

func (b *Board) OnRecord(_ context.Context, cycle Cycle, record ArrivalRecord) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	// Late records from a cycle that has already been replaced are ignored
	if cycle.ID != b.cycle.ID {
		return
	}

	b.records = append(b.records, record)
}

func (b *Board) OnCycleEnd(_ context.Context, cycle Cycle, result CycleResult) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if cycle.ID != b.cycle.ID {
		return
	}

	b.refreshing = false
	b.lastResult = result
	b.updatedAt = cycle.StartedAt.Add(result.Duration)
}

func (b *Board) OnClockTick(now time.Time) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.clock = FormatClockDisplay(now)
}

// Records returns a copy of the records published so far in the current cycle.
func (b *Board) Records() []ArrivalRecord {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	records := slices.Clone(b.records)
	if records == nil {
		records = []ArrivalRecord{}
	}
	return records
}

func (b *Board) Snapshot() BoardSnapshot {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	snapshot := BoardSnapshot{
		Station:     b.Station,
		StationName: b.StationName,
		Clock:       b.clock,
		Cycle:       b.cycle.ID,
		Refreshing:  b.refreshing,
		Dropped:     b.lastResult.Stats.Dropped,
		Arrivals:    slices.Clone(b.records),
	}

	if snapshot.Arrivals == nil {
		snapshot.Arrivals = []ArrivalRecord{}
	}

	if !b.updatedAt.IsZero() {
		snapshot.UpdatedAt = b.updatedAt.Format(time.RFC3339)
	}

	if b.lastResult.Err != nil {
		snapshot.LastError = b.lastResult.Err.Error()
		snapshot.LastErrorClass = ErrorClass(b.lastResult.Err)
	}

	return snapshot
}
