package arrivals

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

const DefaultMailboxSize = 256

type boardEventType int

const (
	boardEventCycleStart boardEventType = iota
	boardEventRecord
	boardEventCycleEnd
)

type boardEvent struct {
	Type   boardEventType
	Cycle  Cycle
	Record ArrivalRecord
	Result CycleResult
}

// Publisher moves board events from fetch workers to the observers. Workers post into
// the mailbox and a single Run goroutine delivers everything in the order it was posted,
// so observers never see concurrent calls.
type Publisher struct {
	observers []Observer
	mailbox   chan boardEvent
}

func NewPublisher(mailboxSize int, observers ...Observer) *Publisher {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}

	return &Publisher{
		observers: observers,
		mailbox:   make(chan boardEvent, mailboxSize),
	}
}

// Register adds an observer. It must be called before Run.
func (p *Publisher) Register(observer Observer) {
	p.observers = append(p.observers, observer)
}

func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.mailbox:
			p.dispatch(ctx, event)
		}
	}
}

func (p *Publisher) CycleStarted(ctx context.Context, cycle Cycle) error {
	return p.post(ctx, boardEvent{Type: boardEventCycleStart, Cycle: cycle})
}

func (p *Publisher) Publish(ctx context.Context, cycle Cycle, record ArrivalRecord) error {
	return p.post(ctx, boardEvent{Type: boardEventRecord, Cycle: cycle, Record: record})
}

func (p *Publisher) CycleEnded(ctx context.Context, cycle Cycle, result CycleResult) error {
	return p.post(ctx, boardEvent{Type: boardEventCycleEnd, Cycle: cycle, Result: result})
}

func (p *Publisher) post(ctx context.Context, event boardEvent) error {
	select {
	case p.mailbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) dispatch(ctx context.Context, event boardEvent) {
	for _, observer := range p.observers {
		var catcher panics.Catcher

		catcher.Try(func() {
			switch event.Type {
			case boardEventCycleStart:
				observer.OnCycleStart(ctx, event.Cycle)
			case boardEventRecord:
				observer.OnRecord(ctx, event.Cycle, event.Record)
			case boardEventCycleEnd:
				observer.OnCycleEnd(ctx, event.Cycle, event.Result)
			}
		})

		if recovered := catcher.Recovered(); recovered != nil {
			log.Error().
				Err(recovered.AsError()).
				Str("station", event.Cycle.Station).
				Uint64("cycle", event.Cycle.ID).
				Msg("Board observer panicked")
		}
	}
}
