package dto

type QueryRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type QueryResponse struct {
	SessionID      string `json:"session_id"`
	Answer         string `json:"answer"`
	HistoryCleared bool   `json:"history_cleared,omitempty"`
}
