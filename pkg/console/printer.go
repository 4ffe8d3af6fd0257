package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/travigo/arrivalboard/pkg/arrivals"
)

// Printer writes each arrival as a tab separated row of id, status, arrival and eta, and
// optionally the live clock on its own line.
type Printer struct {
	Output    io.Writer
	ShowClock bool

	mutex sync.Mutex
}

func NewPrinter(showClock bool) *Printer {
	return &Printer{
		Output:    os.Stdout,
		ShowClock: showClock,
	}
}

func FormatRow(record arrivals.ArrivalRecord) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", record.VehicleID, record.Status, record.ArrivalClock, record.ETAClock)
}

func (p *Printer) OnCycleStart(_ context.Context, _ arrivals.Cycle) {}

func (p *Printer) OnRecord(_ context.Context, _ arrivals.Cycle, record arrivals.ArrivalRecord) {
	p.println(FormatRow(record))
}

func (p *Printer) OnCycleEnd(_ context.Context, cycle arrivals.Cycle, result arrivals.CycleResult) {
	if result.Err != nil {
		p.println(fmt.Sprintf("# %s unavailable: %s", cycle.Station, arrivals.ErrorClass(result.Err)))
	}
}

func (p *Printer) OnClockTick(now time.Time) {
	if !p.ShowClock {
		return
	}

	p.println(arrivals.FormatClockDisplay(now))
}

func (p *Printer) println(line string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	fmt.Fprintln(p.Output, line)
}
