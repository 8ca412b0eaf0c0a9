package service

import (
	"fmt"
	"strconv"
	"strings"

	"flight-rag/internal/models"
)

// FlightPassage renders a flight record as a single natural-language sentence.
// The template is fixed so identical records always embed identically.
func FlightPassage(f models.Flight) string {
	layovers := "no layovers"
	if len(f.Layovers) > 0 {
		layovers = "layovers in " + strings.Join(f.Layovers, ", ")
	}
	refundable := "non-refundable"
	if f.Refundable {
		refundable = "refundable"
	}
	price := strconv.FormatFloat(f.PriceUSD, 'f', -1, 64)
	return fmt.Sprintf(
		"Flight from %s to %s on %s (%s). Departure: %s, Return: %s. %s. Price: $%s USD, %s.",
		f.From, f.To, f.Airline, f.Alliance,
		f.DepartureDate, f.ReturnDate,
		layovers, price, refundable,
	)
}

// VisaPassages splits raw visa rules text into one passage per sentence.
// The splitter is a deliberately naive ". " split: abbreviations and decimal
// numbers will break it, and retrieval boundaries depend on it staying this
// way. Empty fragments are dropped; each kept fragment is trimmed and
// terminated with a single period.
func VisaPassages(rawText string) []string {
	fragments := strings.Split(rawText, ". ")
	passages := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		passages = append(passages, strings.TrimRight(fragment, ".")+".")
	}
	return passages
}
