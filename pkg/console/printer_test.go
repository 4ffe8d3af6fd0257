package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/arrivalboard/pkg/arrivals"
)

func TestPrinterWritesRows(t *testing.T) {
	output := &bytes.Buffer{}
	printer := &Printer{Output: output}

	ctx := context.Background()
	cycle := arrivals.Cycle{ID: 1, Station: "bosso"}

	printer.OnCycleStart(ctx, cycle)
	printer.OnRecord(ctx, cycle, arrivals.ArrivalRecord{VehicleID: "bus-1", Status: "moving", ETAClock: "01:05", ArrivalClock: "12:01:05"})
	printer.OnRecord(ctx, cycle, arrivals.ArrivalRecord{VehicleID: "bus-2", Status: "stopped", ETAClock: "00:00", ArrivalClock: "12:00:00"})
	printer.OnCycleEnd(ctx, cycle, arrivals.CycleResult{})

	assert.Equal(t, "bus-1\tmoving\t12:01:05\t01:05\nbus-2\tstopped\t12:00:00\t00:00\n", output.String())
}

func TestPrinterReportsFailedCycle(t *testing.T) {
	output := &bytes.Buffer{}
	printer := &Printer{Output: output}

	printer.OnCycleEnd(context.Background(), arrivals.Cycle{ID: 1, Station: "bosso"}, arrivals.CycleResult{
		Err: &arrivals.ParseError{Station: "bosso", Reason: "station missing from response"},
	})

	assert.Equal(t, "# bosso unavailable: parse\n", output.String())
}

func TestPrinterClock(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 30, 5, 0, time.UTC)

	output := &bytes.Buffer{}
	printer := &Printer{Output: output}
	printer.OnClockTick(now)
	assert.Empty(t, output.String())

	printer.ShowClock = true
	printer.OnClockTick(now)
	assert.Equal(t, "Wed, 04 Mar 2026 12:30:05 UTC\n", output.String())
}
