package dto

type IngestResponse struct {
	Status                string  `json:"status"`
	Message               string  `json:"message"`
	DocumentCount         int     `json:"document_count"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}
