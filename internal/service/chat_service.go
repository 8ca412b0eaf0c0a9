package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"flight-rag/internal/dto"
	"flight-rag/internal/models"
	"flight-rag/internal/repository"

	"go.uber.org/zap"
)

// farewellAnswer overrides the model's answer when a question ends the session.
const farewellAnswer = "Session ended. Goodbye!"

// Generator invokes the external language model with an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ChatService struct {
	sessions  *repository.SessionRepository
	indexRepo *repository.IndexRepository
	embedder  Embedder
	generator Generator
	topK      int
	logger    *zap.Logger
}

func NewChatService(
	sessions *repository.SessionRepository,
	indexRepo *repository.IndexRepository,
	embedder Embedder,
	generator Generator,
	topK int,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		indexRepo: indexRepo,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// Answer runs one conversational retrieval turn: resolve the session, reload
// the persisted index, retrieve the most similar passages, invoke the model
// with history and context, and record the exchange. A question containing
// "exit" (any case, anywhere in the text) tears the session down afterwards.
func (s *ChatService) Answer(ctx context.Context, sessionID, question string) (*dto.QueryResponse, error) {
	id, history := s.sessions.Resolve(sessionID)

	passages, err := s.indexRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	retrieved := topPassages(queryVector, passages, s.topK)
	prompt := buildPrompt(history, question, retrieved)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.sessions.AppendTurn(id, models.Turn{Question: question, Answer: answer})

	s.logger.Info("Query answered",
		zap.String("session_id", id.String()),
		zap.Int("retrieved", len(retrieved)),
		zap.Int("history_turns", len(history)),
	)

	if strings.Contains(strings.ToLower(question), "exit") {
		s.sessions.Terminate(id)
		return &dto.QueryResponse{
			SessionID:      id.String(),
			Answer:         farewellAnswer,
			HistoryCleared: true,
		}, nil
	}

	return &dto.QueryResponse{
		SessionID: id.String(),
		Answer:    answer,
	}, nil
}

// buildPrompt assembles the chat history, the retrieved context and the
// question into the fixed prompt layout the model is instructed on.
func buildPrompt(history []models.Turn, question string, retrieved []string) string {
	var builder strings.Builder

	builder.WriteString("Chat history:\n")
	if len(history) == 0 {
		builder.WriteString("(empty)\n")
	}
	for _, turn := range history {
		builder.WriteString("User: ")
		builder.WriteString(turn.Question)
		builder.WriteString("\nAssistant: ")
		builder.WriteString(turn.Answer)
		builder.WriteString("\n")
	}

	builder.WriteString("\nQuestion: ")
	builder.WriteString(question)

	builder.WriteString("\n\nContext:\n")
	builder.WriteString(strings.Join(retrieved, "\n"))

	builder.WriteString("\n\nProvide your answer:")
	return builder.String()
}

// topPassages ranks all indexed passages by cosine similarity to the query
// vector and returns the text of the k best matches.
func topPassages(query []float32, passages []models.Passage, k int) []string {
	idxs := make([]int, len(passages))
	scores := make([]float64, len(passages))
	for i, p := range passages {
		idxs[i] = i
		scores[i] = cosineSimilarity(query, p.Embedding)
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	if k > len(idxs) {
		k = len(idxs)
	}
	top := make([]string, 0, k)
	for _, i := range idxs[:k] {
		top = append(top, passages[i].Text)
	}
	return top
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
