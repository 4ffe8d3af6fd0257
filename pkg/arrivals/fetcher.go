package arrivals

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultStationEndpoint = "http://dcraz8317.pythonanywhere.com/station"

// ArrivalFetcher produces the records for one station, calling emit for each complete
// record in upstream order as soon as it has been derived.
type ArrivalFetcher interface {
	Fetch(ctx context.Context, station string, emit func(ArrivalRecord)) (FetchStats, error)
}

type FetchStats struct {
	Entries   int
	Published int
	Dropped   int
}

type Fetcher struct {
	Endpoint string
	Client   *http.Client

	Now func() time.Time
}

func NewFetcher(endpoint string, timeout time.Duration) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultStationEndpoint
	}

	return &Fetcher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Now:      time.Now,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, station string, emit func(ArrivalRecord)) (FetchStats, error) {
	var stats FetchStats

	entries, err := f.GetStationEntries(ctx, station)
	if err != nil {
		return stats, err
	}
	stats.Entries = len(entries)

	for index, entry := range entries {
		record := NewArrivalRecord(entry, f.now())

		if !record.Complete() {
			stats.Dropped++
			log.Debug().
				Str("station", station).
				Int("index", index).
				Str("vehicle", entry.ID).
				Msg("Dropping incomplete arrival")
			continue
		}

		stats.Published++
		emit(record)
	}

	return stats, nil
}

// FetchAll collects a whole cycle into a slice.
func (f *Fetcher) FetchAll(ctx context.Context, station string) ([]ArrivalRecord, FetchStats, error) {
	records := []ArrivalRecord{}

	stats, err := f.Fetch(ctx, station, func(record ArrivalRecord) {
		records = append(records, record)
	})

	return records, stats, err
}

// GetStationEntries downloads the station document and returns the raw entries listed
// under station. Entries that cannot be decoded come back as zero values so that they
// are dropped later without disturbing the order of the others.
func (f *Fetcher) GetStationEntries(ctx context.Context, station string) ([]StationEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: f.Endpoint, Err: err}
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, &NetworkError{URL: f.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: f.Endpoint, StatusCode: resp.StatusCode}
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: f.Endpoint, Err: err}
	}

	return ParseStationEntries(jsonBytes, station)
}

func ParseStationEntries(jsonBytes []byte, station string) ([]StationEntry, error) {
	var response stationResponse
	if err := json.Unmarshal(jsonBytes, &response); err != nil {
		return nil, &ParseError{Station: station, Reason: "invalid JSON document", Err: err}
	}

	if response.Data == nil {
		return nil, &ParseError{Station: station, Reason: "missing data object"}
	}

	rawStation, ok := response.Data[station]
	if !ok {
		return nil, &ParseError{Station: station, Reason: "station not present in data"}
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(rawStation, &rawEntries); err != nil {
		return nil, &ParseError{Station: station, Reason: "station data is not a list", Err: err}
	}

	entries := make([]StationEntry, 0, len(rawEntries))
	for index, rawEntry := range rawEntries {
		var entry StationEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			log.Debug().Err(err).Str("station", station).Int("index", index).Msg("Malformed arrival entry")
			entry = StationEntry{}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Fetcher) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}
