package arrivals

import (
	"fmt"
	"time"
)

const ClockDisplayLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// PadClockField left pads values in [0,9] with a single zero. Anything wider is left
// untouched, so an ETA of 134 minutes renders as "134".
func PadClockField(value int) string {
	return fmt.Sprintf("%02d", value)
}

// FormatETA renders a countdown in seconds as MM:SS.
func FormatETA(etaSeconds int) string {
	return PadClockField(etaSeconds/60) + ":" + PadClockField(etaSeconds%60)
}

// FormatArrivalClock renders the local wall-clock time etaSeconds after now as HH:MM:SS.
func FormatArrivalClock(now time.Time, etaSeconds int) string {
	arrival := now.Add(time.Duration(etaSeconds) * time.Second)

	return PadClockField(arrival.Hour()) + ":" + PadClockField(arrival.Minute()) + ":" + PadClockField(arrival.Second())
}

// FormatClockDisplay renders the live clock text shown next to the board.
func FormatClockDisplay(now time.Time) string {
	return now.Format(ClockDisplayLayout)
}

// NewArrivalRecord derives the display fields for one upstream entry.
func NewArrivalRecord(entry StationEntry, now time.Time) ArrivalRecord {
	record := ArrivalRecord{
		VehicleID: entry.ID,
		Status:    entry.Status,
	}

	if entry.ETA == nil || *entry.ETA < 0 {
		return record
	}

	record.ETASeconds = *entry.ETA
	record.ETAClock = FormatETA(*entry.ETA)
	record.ArrivalClock = FormatArrivalClock(now, *entry.ETA)

	return record
}
