package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flight-rag/internal/models"
)

func TestSessionRepository_ResolveCreatesFreshSession(t *testing.T) {
	repo := NewSessionRepository(zap.NewNop())

	id1, history := repo.Resolve("")
	assert.Empty(t, history)

	id2, _ := repo.Resolve("not-a-uuid")
	id3, _ := repo.Resolve("")

	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.NotEqual(t, id2, id3)
	assert.Equal(t, 3, repo.Len())
}

func TestSessionRepository_ResolveKnownSession(t *testing.T) {
	repo := NewSessionRepository(zap.NewNop())

	id, _ := repo.Resolve("")
	repo.AppendTurn(id, models.Turn{Question: "q1", Answer: "a1"})
	repo.AppendTurn(id, models.Turn{Question: "q2", Answer: "a2"})

	resolved, history := repo.Resolve(id.String())
	assert.Equal(t, id, resolved)
	require.Len(t, history, 2)
	assert.Equal(t, "q1", history[0].Question)
	assert.Equal(t, "a2", history[1].Answer)
	assert.Equal(t, 1, repo.Len())
}

func TestSessionRepository_HistorySnapshotIsolated(t *testing.T) {
	repo := NewSessionRepository(zap.NewNop())

	id, _ := repo.Resolve("")
	repo.AppendTurn(id, models.Turn{Question: "q", Answer: "a"})

	_, history := repo.Resolve(id.String())
	history[0].Answer = "mutated"

	_, fresh := repo.Resolve(id.String())
	assert.Equal(t, "a", fresh[0].Answer)
}

func TestSessionRepository_TerminateIsIdempotent(t *testing.T) {
	repo := NewSessionRepository(zap.NewNop())

	id, _ := repo.Resolve("")
	repo.Terminate(id)
	repo.Terminate(id) // stale second removal must not panic
	assert.Equal(t, 0, repo.Len())

	// A terminated id is treated as unknown: resolving it starts over
	resolved, history := repo.Resolve(id.String())
	assert.NotEqual(t, id, resolved)
	assert.Empty(t, history)
}

func TestSessionRepository_AppendAfterTerminateIsNoop(t *testing.T) {
	repo := NewSessionRepository(zap.NewNop())

	id, _ := repo.Resolve("")
	repo.Terminate(id)
	repo.AppendTurn(id, models.Turn{Question: "q", Answer: "a"})
	assert.Equal(t, 0, repo.Len())
}
