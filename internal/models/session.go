package models

import "github.com/google/uuid"

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question string
	Answer   string
}

// Session holds the in-memory conversation state for one client.
// Sessions live until the client ends them or the process exits.
type Session struct {
	ID    uuid.UUID
	Turns []Turn
}
