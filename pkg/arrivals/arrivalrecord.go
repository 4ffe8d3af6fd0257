package arrivals

import "encoding/json"

// ArrivalRecord is one row of the arrivals board. Records are values and are never
// modified after the fetcher produces them.
type ArrivalRecord struct {
	VehicleID    string `json:"vehicleId" groups:"basic,detailed"`
	Status       string `json:"status" groups:"basic,detailed"`
	ETAClock     string `json:"eta" groups:"basic,detailed"`
	ArrivalClock string `json:"arrival" groups:"basic,detailed"`

	ETASeconds int `json:"etaSeconds" groups:"detailed"`
}

// Complete reports whether every displayed field is populated. Incomplete records are
// never published.
func (r ArrivalRecord) Complete() bool {
	return r.VehicleID != "" && r.Status != "" && r.ETAClock != "" && r.ArrivalClock != ""
}

// StationEntry is a single upstream arrival prediction as returned under the station key.
type StationEntry struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	ETA    *int   `json:"eta"`
}

type stationResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}
