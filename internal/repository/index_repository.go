package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"flight-rag/internal/models"

	"go.uber.org/zap"
)

// ErrIndexNotFound is returned when no index has been built yet.
var ErrIndexNotFound = errors.New("vector index not found, run /create-embeddings first")

// IndexRepository persists the vector index as a SQLite file at a fixed path,
// plus a plain-text dump of all passages at a second path for inspection.
type IndexRepository struct {
	indexPath    string
	passagesPath string
	logger       *zap.Logger
}

func NewIndexRepository(indexPath, passagesPath string, logger *zap.Logger) *IndexRepository {
	return &IndexRepository{
		indexPath:    indexPath,
		passagesPath: passagesPath,
		logger:       logger,
	}
}

// Save replaces the persisted index with the given passages. The index is
// built in a temporary file and renamed into place, so a concurrent reader
// sees either the previous index or the new one, never a partial write.
func (r *IndexRepository) Save(ctx context.Context, passages []models.Passage) error {
	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmpPath := r.indexPath + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale temp index: %w", err)
	}

	if err := r.writeIndex(ctx, tmpPath, passages); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, r.indexPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace index: %w", err)
	}

	if err := r.writeDump(passages); err != nil {
		return err
	}

	r.logger.Info("Vector index saved",
		zap.String("path", r.indexPath),
		zap.Int("passages", len(passages)),
	)
	return nil
}

func (r *IndexRepository) writeIndex(ctx context.Context, path string, passages []models.Passage) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE passages (
			id        INTEGER PRIMARY KEY,
			text      TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`); err != nil {
		return fmt.Errorf("failed to create passages table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO passages (id, text, embedding) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range passages {
		if _, err := stmt.ExecContext(ctx, i, p.Text, encodeEmbedding(p.Embedding)); err != nil {
			return fmt.Errorf("failed to insert passage %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

func (r *IndexRepository) writeDump(passages []models.Passage) error {
	if err := os.MkdirAll(filepath.Dir(r.passagesPath), 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	if err := os.WriteFile(r.passagesPath, []byte(strings.Join(texts, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write passages dump: %w", err)
	}
	return nil
}

// Load reads the persisted index from disk. There is no caching: every call
// reopens the file, so queries always see the latest successful build.
func (r *IndexRepository) Load(ctx context.Context) ([]models.Passage, error) {
	if _, err := os.Stat(r.indexPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("failed to stat index: %w", err)
	}

	db, err := sql.Open("sqlite", r.indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT text, embedding FROM passages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	defer rows.Close()

	var passages []models.Passage
	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		embedding, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		passages = append(passages, models.Passage{Text: text, Embedding: embedding})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return passages, nil
}

// Embeddings are stored as little-endian float32 blobs.

func encodeEmbedding(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("corrupt embedding blob of %d bytes", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}
