package events

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
)

// PrintBatchConsumer prints every event it receives. Payloads that are not events are
// rejected so they end up in the rejected list rather than being lost.
type PrintBatchConsumer struct {
	Output io.Writer

	mutex sync.Mutex
}

func NewPrintBatchConsumer() *PrintBatchConsumer {
	return &PrintBatchConsumer{Output: os.Stdout}
}

func (c *PrintBatchConsumer) Consume(batch rmq.Deliveries) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, delivery := range batch {
		var event Event
		if err := json.Unmarshal([]byte(delivery.Payload()), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")

			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject event")
			}
			continue
		}

		pretty.Fprintf(c.Output, "%# v\n", event)

		if err := delivery.Ack(); err != nil {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
