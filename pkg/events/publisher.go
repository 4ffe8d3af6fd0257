package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/arrivals"
)

// Queue is the part of rmq.Queue the publisher needs.
type Queue interface {
	PublishBytes(payload ...[]byte) error
}

// QueuePublisher forwards every board event onto a queue for consumers in other processes.
type QueuePublisher struct {
	Queue Queue
	Now   func() time.Time
}

func NewQueuePublisher(queue Queue) *QueuePublisher {
	return &QueuePublisher{
		Queue: queue,
		Now:   time.Now,
	}
}

func (p *QueuePublisher) OnCycleStart(_ context.Context, cycle arrivals.Cycle) {
	p.publish(cycle, EventTypeCycleStarted, nil)
}

func (p *QueuePublisher) OnRecord(_ context.Context, cycle arrivals.Cycle, record arrivals.ArrivalRecord) {
	p.publish(cycle, EventTypeArrival, record)
}

func (p *QueuePublisher) OnCycleEnd(_ context.Context, cycle arrivals.Cycle, result arrivals.CycleResult) {
	p.publish(cycle, EventTypeCycleEnded, NewCycleSummary(result))
}

func (p *QueuePublisher) publish(cycle arrivals.Cycle, eventType EventType, body interface{}) {
	event := Event{
		Type:      eventType,
		Station:   cycle.Station,
		Cycle:     cycle.ID,
		Timestamp: p.Now(),
		Body:      body,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", string(eventType)).Msg("Failed to encode event")
		return
	}

	if err := p.Queue.PublishBytes(eventBytes); err != nil {
		log.Error().Err(err).Str("type", string(eventType)).Msg("Failed to publish event")
	}
}
