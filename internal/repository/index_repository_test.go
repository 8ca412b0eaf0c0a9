package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flight-rag/internal/models"
)

func newTestIndexRepo(t *testing.T) *IndexRepository {
	t.Helper()
	dir := t.TempDir()
	return NewIndexRepository(
		filepath.Join(dir, "index.db"),
		filepath.Join(dir, "passages.txt"),
		zap.NewNop(),
	)
}

func TestIndexRepository_LoadBeforeBuild(t *testing.T) {
	repo := newTestIndexRepo(t)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrIndexNotFound)
}

func TestIndexRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := newTestIndexRepo(t)
	ctx := context.Background()

	passages := []models.Passage{
		{Text: "Flight from Karachi to Dubai on PIA (oneworld).", Embedding: []float32{0.1, -0.2, 0.3}},
		{Text: "Visa required.", Embedding: []float32{1, 0, 0}},
		{Text: "Apply online.", Embedding: []float32{0, 1, 0}},
	}
	require.NoError(t, repo.Save(ctx, passages))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, passages, loaded)
}

func TestIndexRepository_SaveOverwritesWholesale(t *testing.T) {
	repo := newTestIndexRepo(t)
	ctx := context.Background()

	first := []models.Passage{{Text: "old", Embedding: []float32{1}}}
	second := []models.Passage{
		{Text: "new one", Embedding: []float32{0.5}},
		{Text: "new two", Embedding: []float32{0.25}},
	}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)

	// No leftover temp file from the swap
	_, err = os.Stat(repo.indexPath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestIndexRepository_WritesPassagesDump(t *testing.T) {
	repo := newTestIndexRepo(t)
	ctx := context.Background()

	passages := []models.Passage{
		{Text: "first passage.", Embedding: []float32{1}},
		{Text: "second passage.", Embedding: []float32{2}},
	}
	require.NoError(t, repo.Save(ctx, passages))

	dump, err := os.ReadFile(repo.passagesPath)
	require.NoError(t, err)
	assert.Equal(t, "first passage.\nsecond passage.", string(dump))
}

func TestEmbeddingBlobRoundTrip(t *testing.T) {
	vector := []float32{0, 1.5, -3.25, 1e-6}
	decoded, err := decodeEmbedding(encodeEmbedding(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)

	_, err = decodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}
