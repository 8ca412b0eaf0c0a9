package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-rag/internal/models"
)

func TestFlightPassage(t *testing.T) {
	flight := models.Flight{
		Airline:       "PIA",
		Alliance:      "oneworld",
		From:          "Karachi",
		To:            "Dubai",
		DepartureDate: "2025-12-01",
		ReturnDate:    "2025-12-10",
		Layovers:      []string{},
		PriceUSD:      250,
		Refundable:    true,
	}

	want := "Flight from Karachi to Dubai on PIA (oneworld). " +
		"Departure: 2025-12-01, Return: 2025-12-10. " +
		"no layovers. Price: $250 USD, refundable."
	assert.Equal(t, want, FlightPassage(flight))

	// Identical input must yield byte-identical output
	assert.Equal(t, FlightPassage(flight), FlightPassage(flight))
}

func TestFlightPassage_LayoversAndNonRefundable(t *testing.T) {
	flight := models.Flight{
		Airline:       "Emirates",
		Alliance:      "none",
		From:          "Dubai",
		To:            "Tokyo",
		DepartureDate: "2026-01-05",
		ReturnDate:    "2026-01-20",
		Layovers:      []string{"Doha", "Bangkok"},
		PriceUSD:      799.5,
		Refundable:    false,
	}

	got := FlightPassage(flight)
	assert.Contains(t, got, "layovers in Doha, Bangkok")
	assert.Contains(t, got, "Price: $799.5 USD")
	assert.Contains(t, got, "non-refundable.")
}

func TestVisaPassages(t *testing.T) {
	got := VisaPassages("Visa required. Apply online.")
	assert.Equal(t, []string{"Visa required.", "Apply online."}, got)
}

func TestVisaPassages_DropsEmptyFragments(t *testing.T) {
	got := VisaPassages("First rule.   . Second rule. ")
	require.Len(t, got, 2)
	assert.Equal(t, "First rule.", got[0])
	assert.Equal(t, "Second rule.", got[1])
}

func TestVisaPassages_SingleTerminatingPeriod(t *testing.T) {
	for _, passage := range VisaPassages("One. Two. Three without period") {
		assert.Regexp(t, `[^.]\.$`, passage)
	}
}

func TestVisaPassages_EmptyInput(t *testing.T) {
	assert.Empty(t, VisaPassages(""))
	assert.Empty(t, VisaPassages("   \n  "))
}
