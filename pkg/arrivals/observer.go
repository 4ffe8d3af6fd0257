package arrivals

import (
	"context"
	"time"
)

// Cycle identifies one fetch-transform-publish pass.
type Cycle struct {
	ID        uint64
	Station   string
	StartedAt time.Time
}

type CycleResult struct {
	Stats    FetchStats
	Duration time.Duration
	Err      error
}

// Observer receives board events in order from a single goroutine. OnCycleStart always
// precedes the OnRecord calls of that cycle, and OnCycleEnd follows them.
type Observer interface {
	OnCycleStart(ctx context.Context, cycle Cycle)
	OnRecord(ctx context.Context, cycle Cycle, record ArrivalRecord)
	OnCycleEnd(ctx context.Context, cycle Cycle, result CycleResult)
}

type ClockObserver interface {
	OnClockTick(now time.Time)
}

// ObserverFuncs adapts plain callbacks to an Observer. Nil callbacks are skipped.
type ObserverFuncs struct {
	CycleStart func()
	Record     func(ArrivalRecord)
	CycleEnd   func(CycleResult)
}

func (o ObserverFuncs) OnCycleStart(_ context.Context, _ Cycle) {
	if o.CycleStart != nil {
		o.CycleStart()
	}
}

func (o ObserverFuncs) OnRecord(_ context.Context, _ Cycle, record ArrivalRecord) {
	if o.Record != nil {
		o.Record(record)
	}
}

func (o ObserverFuncs) OnCycleEnd(_ context.Context, _ Cycle, result CycleResult) {
	if o.CycleEnd != nil {
		o.CycleEnd(result)
	}
}

type ClockFunc func(now time.Time)

func (f ClockFunc) OnClockTick(now time.Time) {
	f(now)
}
