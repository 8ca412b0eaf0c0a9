package models

// Flight is a single listing from the uploaded flights file.
// Records are immutable once ingested; every field is required.
type Flight struct {
	Airline       string   `json:"airline"`
	Alliance      string   `json:"alliance"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date"`
	Layovers      []string `json:"layovers"`
	PriceUSD      float64  `json:"price_usd"`
	Refundable    bool     `json:"refundable"`
}

// FlightRequiredFields lists the fields every flight record must carry.
var FlightRequiredFields = []string{
	"airline", "alliance", "from", "to",
	"departure_date", "return_date", "layovers", "price_usd", "refundable",
}
