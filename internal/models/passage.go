package models

// Passage is the retrieval unit stored in the vector index: one formatted
// flight record or one visa rule fragment, with its embedding.
type Passage struct {
	Text      string
	Embedding []float32
}
