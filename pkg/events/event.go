package events

import (
	"time"

	"github.com/travigo/arrivalboard/pkg/arrivals"
)

type EventType string

const (
	EventTypeCycleStarted EventType = "ArrivalCycleStarted"
	EventTypeArrival      EventType = "Arrival"
	EventTypeCycleEnded   EventType = "ArrivalCycleEnded"
)

type Event struct {
	Type      EventType
	Station   string
	Cycle     uint64
	Timestamp time.Time

	Body interface{} `json:",omitempty"`
}

type CycleSummary struct {
	Entries   int
	Published int
	Dropped   int

	DurationMillis int64

	Error      string `json:",omitempty"`
	ErrorClass string `json:",omitempty"`
}

func NewCycleSummary(result arrivals.CycleResult) CycleSummary {
	summary := CycleSummary{
		Entries:        result.Stats.Entries,
		Published:      result.Stats.Published,
		Dropped:        result.Stats.Dropped,
		DurationMillis: result.Duration.Milliseconds(),
	}

	if result.Err != nil {
		summary.Error = result.Err.Error()
		summary.ErrorClass = arrivals.ErrorClass(result.Err)
	}

	return summary
}
