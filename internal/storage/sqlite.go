package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	apperrors "go-nutrition-scanner/internal/errors"
	"go-nutrition-scanner/internal/pipeline"
)

// Store persists completed analyses for later retrieval
type Store interface {
	Save(ctx context.Context, result *pipeline.AnalysisResult) error
	Get(ctx context.Context, id string) (*pipeline.AnalysisResult, error)
	Recent(ctx context.Context, limit int) ([]*pipeline.AnalysisResult, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id             TEXT PRIMARY KEY,
	created_at     TIMESTAMP NOT NULL,
	tier           TEXT NOT NULL,
	confidence     TEXT NOT NULL,
	overall_score  REAL NOT NULL,
	recommendation TEXT NOT NULL,
	payload        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// SQLiteStore keeps analyses in a local SQLite database. The full result
// is stored as a JSON payload; the indexed columns exist for listing and
// filtering without deserializing every row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open database", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewInternalError("failed to initialize schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, result *pipeline.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewInternalError("failed to serialize analysis", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, created_at, tier, confidence, overall_score, recommendation, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.CreatedAt.Format(time.RFC3339Nano),
		string(result.Provenance.Tier),
		string(result.Provenance.Confidence),
		result.OverallScore,
		string(result.Recommendation),
		string(payload),
	)
	if err != nil {
		return apperrors.NewInternalError("failed to persist analysis", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*pipeline.AnalysisResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analyses WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("analysis not found", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load analysis", err)
	}
	return decodeResult(payload)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*pipeline.AnalysisResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list analyses", err)
	}
	defer rows.Close()

	var results []*pipeline.AnalysisResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.NewInternalError("failed to scan analysis row", err)
		}
		result, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate analyses", err)
	}
	return results, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeResult(payload string) (*pipeline.AnalysisResult, error) {
	var result pipeline.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, apperrors.NewInternalError("failed to deserialize analysis", err)
	}
	return &result, nil
}
